package domain

// KeyPrefix namespaces every key careerdex writes to the persistent store.
const KeyPrefix = "careerdex:"

// CollectionKey returns the persistent-store key for a collection snapshot.
func CollectionKey(name string) string {
	return KeyPrefix + "collection:" + name
}

// UserKey returns the persistent-store key for user-scoped data.
func UserKey(userID string) string {
	return KeyPrefix + "user:" + userID
}
