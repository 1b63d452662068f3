package postgres

import "github.com/kailas-cloud/careerdex/internal/domain/catalog"

// Score rows live on the college/specialty join table.
const scoreQuery = `
SELECT COALESCE(college_id::text, ''), COALESCE(specialty_id::text, ''), COALESCE(avg_score_2025, 0)::float8
FROM college_specialties
ORDER BY college_id, specialty_id`

const incrementVersionQuery = `
INSERT INTO collection_versions (collection, version, updated_at)
VALUES ($1, 1, now())
ON CONFLICT (collection)
DO UPDATE SET version = collection_versions.version + 1, updated_at = now()`

var collectionQueries = map[catalog.CollectionName]string{
	catalog.Colleges: `
SELECT to_jsonb(c) || jsonb_build_object(
	'college_specialties', COALESCE((
		SELECT jsonb_agg(jsonb_build_object('specialty_id', cs.specialty_id) ORDER BY cs.specialty_id)
		FROM college_specialties cs WHERE cs.college_id = c.id), '[]'::jsonb),
	'college_tags', COALESCE((
		SELECT jsonb_agg(jsonb_build_object('tag_id', ct.tag_id, 'weight', ct.weight) ORDER BY ct.id)
		FROM college_tags ct WHERE ct.college_id = c.id), '[]'::jsonb)
)
FROM colleges c
ORDER BY c.id`,

	catalog.Specialties: `
SELECT to_jsonb(s) || jsonb_build_object(
	'specialty_tags', COALESCE((
		SELECT jsonb_agg(jsonb_build_object('tag_id', st.tag_id, 'weight', st.weight) ORDER BY st.id)
		FROM specialty_tags st WHERE st.specialty_id = s.id), '[]'::jsonb),
	'college_specialties', COALESCE((
		SELECT jsonb_agg(jsonb_build_object('college_id', cs.college_id) ORDER BY cs.college_id)
		FROM college_specialties cs WHERE cs.specialty_id = s.id), '[]'::jsonb),
	'profession_specialties', COALESCE((
		SELECT jsonb_agg(jsonb_build_object('profession_id', ps.profession_id) ORDER BY ps.profession_id)
		FROM profession_specialties ps WHERE ps.specialty_id = s.id), '[]'::jsonb)
)
FROM specialties s
ORDER BY s.id`,

	catalog.Tags: `
SELECT to_jsonb(t)
FROM tags t
ORDER BY t.id`,

	catalog.Professions: `
SELECT to_jsonb(p) || jsonb_build_object(
	'profession_specialties', COALESCE((
		SELECT jsonb_agg(jsonb_build_object('specialty_id', ps.specialty_id) ORDER BY ps.specialty_id)
		FROM profession_specialties ps WHERE ps.profession_id = p.id), '[]'::jsonb),
	'profession_tags', COALESCE((
		SELECT jsonb_agg(jsonb_build_object('tag_id', pt.tag_id, 'weight', pt.weight) ORDER BY pt.id)
		FROM profession_tags pt WHERE pt.profession_id = p.id), '[]'::jsonb)
)
FROM professions p
ORDER BY p.id`,

	catalog.Quizzes: `
SELECT to_jsonb(q) || jsonb_build_object(
	'quiz_questions', COALESCE((
		SELECT jsonb_agg(to_jsonb(qq) || jsonb_build_object(
			'quiz_answers', COALESCE((
				SELECT jsonb_agg(to_jsonb(qa) || jsonb_build_object(
					'answer_tags', COALESCE((
						SELECT jsonb_agg(jsonb_build_object('tag_id', at.tag_id, 'weight', at.weight) ORDER BY at.id)
						FROM answer_tags at WHERE at.answer_id = qa.id), '[]'::jsonb)
				) ORDER BY qa.position)
				FROM quiz_answers qa WHERE qa.question_id = qq.id), '[]'::jsonb)
		) ORDER BY qq.position)
		FROM quiz_questions qq WHERE qq.quiz_id = q.id), '[]'::jsonb)
)
FROM quizzes q
ORDER BY q.id`,

	catalog.News: `
SELECT to_jsonb(n)
FROM news n
ORDER BY n.published_at DESC NULLS LAST, n.id`,
}
