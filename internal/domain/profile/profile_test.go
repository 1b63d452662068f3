package profile

import (
	"math"
	"testing"

	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
)

func TestProfile_Interest(t *testing.T) {
	p := Profile{"a": 3, "b": 0, "c": -2, "d": math.NaN(), "e": math.Inf(1)}

	if p.Interest("a") != 3 {
		t.Errorf("Interest(a) = %v", p.Interest("a"))
	}
	for _, id := range []string{"b", "c", "d", "e", "missing"} {
		if got := p.Interest(id); got != 0 {
			t.Errorf("Interest(%s) = %v, want 0", id, got)
		}
	}
}

func TestProfile_IsEmpty(t *testing.T) {
	if !(Profile{}).IsEmpty() {
		t.Error("empty map should be empty")
	}
	if !(Profile{"a": 0, "b": -1}).IsEmpty() {
		t.Error("profile without positive interest should be empty")
	}
	if (Profile{"a": 0.1}).IsEmpty() {
		t.Error("profile with positive interest should not be empty")
	}
	var nilProfile Profile
	if !nilProfile.IsEmpty() {
		t.Error("nil profile should be empty")
	}
}

func TestBuilder(t *testing.T) {
	p := NewBuilder(10).
		AddTagScores(map[string]float64{"t1": 2, "t2": -1, "": 4}).
		AddAnswer(catalog.Answer{Tags: []catalog.TagWeight{{TagID: "t1", Weight: 50}, {TagID: "bad", Weight: 300}}}).
		AddLiked([]catalog.TagWeight{{TagID: "t3", Weight: 40}}).
		Build()

	if p["t1"] != 2.5 {
		t.Errorf("t1 = %v, want 2.5", p["t1"])
	}
	if _, ok := p["t2"]; ok {
		t.Error("negative scores must be dropped")
	}
	if _, ok := p["bad"]; ok {
		t.Error("out-of-range weights must be dropped")
	}
	if p["t3"] != 4 {
		t.Errorf("t3 = %v, want 4", p["t3"])
	}
}

func TestNewBuilder_DefaultBoost(t *testing.T) {
	p := NewBuilder(0).AddLiked([]catalog.TagWeight{{TagID: "t", Weight: 100}}).Build()
	if p["t"] != DefaultLikeBoost {
		t.Errorf("t = %v, want %v", p["t"], DefaultLikeBoost)
	}
}

func TestFromUserData(t *testing.T) {
	u := UserData{
		QuizResults:      []QuizResult{{QuizID: "q1", TagScores: map[string]float64{"t1": 3}}},
		LikedSpecialties: []string{"s1", "ghost"},
		LikedColleges:    []string{"c1"},
	}
	specs := map[string]catalog.Specialty{
		"s1": {ID: "s1", Specs: []catalog.TagWeight{{TagID: "t1", Weight: 20}}},
	}
	cols := map[string]catalog.College{
		"c1": {ID: "c1", Specs: []catalog.TagWeight{{TagID: "t2", Weight: 50}}},
	}

	p := FromUserData(u, specs, cols, 10)
	if p["t1"] != 5 {
		t.Errorf("t1 = %v, want 5", p["t1"])
	}
	if p["t2"] != 5 {
		t.Errorf("t2 = %v, want 5", p["t2"])
	}
}

func TestUserData_RecordGameScore(t *testing.T) {
	var u UserData
	u.RecordGameScore("memory", 10)
	u.RecordGameScore("memory", 7)
	u.RecordGameScore("memory", 12)
	if u.GameScores["memory"] != 12 {
		t.Errorf("best score = %d, want 12", u.GameScores["memory"])
	}
}
