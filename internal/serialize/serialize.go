package serialize

import (
	"jobboard/internal/database"
)

// DefaultMaxDepth 限制关系展开层数。
const DefaultMaxDepth = 6

// Serializer 把实体图转换成可直接 JSON 编码的 map。
type Serializer struct {
	rules    Rules
	maxDepth int
}

// Default 使用 DefaultRules 与 DefaultMaxDepth。
var Default = New(DefaultRules, DefaultMaxDepth)

// New 构造序列化器；maxDepth <= 0 时取 DefaultMaxDepth。
func New(rules Rules, maxDepth int) *Serializer {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Serializer{rules: rules, maxDepth: maxDepth}
}

// Value 使用默认规则序列化单个实体。
func Value(v any, exclude ...string) any {
	return Default.Value(v, exclude...)
}

// List 使用默认规则序列化实体切片。
func List[T any](items []T, exclude ...string) []any {
	return ListWith(Default, items, exclude...)
}

// ListWith 使用指定序列化器序列化实体切片。
func ListWith[T any](s *Serializer, items []T, exclude ...string) []any {
	out := make([]any, 0, len(items))
	for i := range items {
		out = append(out, s.Value(&items[i], exclude...))
	}
	return out
}

// Value 序列化实体，exclude 与该类型的默认规则合并生效。
// 非实体值原样返回；nil 指针返回 nil。
func (s *Serializer) Value(v any, exclude ...string) any {
	n, ok := describe(v)
	if !ok {
		return v
	}
	if n == nil {
		return nil
	}
	return s.node(n, exclude, nil, 0)
}

type visitKey struct {
	kind string
	id   uint
	ptr  any
}

func (s *Serializer) node(n *entity, exclude []string, path []visitKey, depth int) map[string]any {
	ex := splitRules(exclude, s.rules[n.kind])
	path = append(path, n.key())

	out := make(map[string]any, len(n.fields)+len(n.edges))
	for _, f := range n.fields {
		if ex.direct[f.name] {
			continue
		}
		out[f.name] = f.value
	}

	if depth >= s.maxDepth {
		return out
	}

	for _, e := range n.edges {
		if ex.direct[e.name] {
			continue
		}
		childExclude := ex.nested[e.name]

		if !e.many {
			child, _ := describe(e.one)
			if child == nil {
				out[e.name] = nil
				continue
			}
			if onPath(path, child.key()) {
				continue
			}
			out[e.name] = s.node(child, childExclude, path, depth+1)
			continue
		}

		items := make([]any, 0, len(e.items))
		for _, item := range e.items {
			child, _ := describe(item)
			if child == nil || onPath(path, child.key()) {
				continue
			}
			items = append(items, s.node(child, childExclude, path, depth+1))
		}
		out[e.name] = items
	}

	return out
}

func onPath(path []visitKey, key visitKey) bool {
	for _, k := range path {
		if k == key {
			return true
		}
	}
	return false
}

type field struct {
	name  string
	value any
}

type edge struct {
	name  string
	many  bool
	one   any
	items []any
}

type entity struct {
	kind   string
	id     uint
	self   any
	fields []field
	edges  []edge
}

// key 用主键识别实体；未落库的实体（ID 为 0）退化为按指针识别。
func (e *entity) key() visitKey {
	if e.id != 0 {
		return visitKey{kind: e.kind, id: e.id}
	}
	return visitKey{kind: e.kind, ptr: e.self}
}

func one(name string, v any) edge { return edge{name: name, one: v} }

func many[T any](name string, items []T) edge {
	out := make([]any, 0, len(items))
	for i := range items {
		out = append(out, &items[i])
	}
	return edge{name: name, many: true, items: out}
}

// describe 返回实体的字段与关系；ok 为 false 表示 v 不是已知实体。
func describe(v any) (*entity, bool) {
	switch x := v.(type) {
	case database.User:
		return describe(&x)
	case database.Employer:
		return describe(&x)
	case database.Applicant:
		return describe(&x)
	case database.JobCategory:
		return describe(&x)
	case database.JobPosting:
		return describe(&x)
	case database.JobApplication:
		return describe(&x)
	case database.Favorite:
		return describe(&x)

	case *database.User:
		if x == nil {
			return nil, true
		}
		return &entity{
			kind: KindUser, id: x.ID, self: x,
			fields: append(timestamps(x.Model),
				field{"username", x.Username},
				field{"email", x.Email},
				field{"phone", x.Phone},
				field{"street_1", x.Street1},
				field{"street_2", x.Street2},
				field{"city", x.City},
				field{"state", x.State},
				field{"zip_code", x.ZipCode},
			),
			edges: []edge{
				one("employer", x.Employer),
				one("applicant", x.Applicant),
			},
		}, true

	case *database.Employer:
		if x == nil {
			return nil, true
		}
		return &entity{
			kind: KindEmployer, id: x.ID, self: x,
			fields: append(timestamps(x.Model),
				field{"name", x.Name},
				field{"user_id", x.UserID},
			),
			edges: []edge{
				one("user", x.User),
				many("job_postings", x.JobPostings),
			},
		}, true

	case *database.Applicant:
		if x == nil {
			return nil, true
		}
		return &entity{
			kind: KindApplicant, id: x.ID, self: x,
			fields: append(timestamps(x.Model),
				field{"first_name", x.FirstName},
				field{"last_name", x.LastName},
				field{"mobile", x.Mobile},
				field{"user_id", x.UserID},
			),
			edges: []edge{
				one("user", x.User),
				many("job_applications", x.JobApplications),
				many("favorites", x.Favorites),
			},
		}, true

	case *database.JobCategory:
		if x == nil {
			return nil, true
		}
		return &entity{
			kind: KindJobCategory, id: x.ID, self: x,
			fields: append(timestamps(x.Model),
				field{"category", x.Category},
			),
			edges: []edge{
				many("job_postings", x.JobPostings),
			},
		}, true

	case *database.JobPosting:
		if x == nil {
			return nil, true
		}
		return &entity{
			kind: KindJobPosting, id: x.ID, self: x,
			fields: append(timestamps(x.Model),
				field{"title", x.Title},
				field{"description", x.Description},
				field{"salary", x.Salary},
				field{"job_type", x.JobType},
				field{"remote", x.Remote},
				field{"is_active", x.IsActive},
				field{"location", x.Location},
				field{"job_category_id", x.JobCategoryID},
				field{"employer_id", x.EmployerID},
			),
			edges: []edge{
				one("job_category", x.JobCategory),
				one("employer", x.Employer),
				many("job_applications", x.JobApplications),
				many("favorites", x.Favorites),
			},
		}, true

	case *database.JobApplication:
		if x == nil {
			return nil, true
		}
		return &entity{
			kind: KindJobApplication, id: x.ID, self: x,
			fields: append(timestamps(x.Model),
				field{"education", x.Education},
				field{"experience", x.Experience},
				field{"certificate", x.Certificate},
				field{"status", x.Status},
				field{"job_posting_id", x.JobPostingID},
				field{"applicant_id", x.ApplicantID},
			),
			edges: []edge{
				one("job_posting", x.JobPosting),
				one("applicant", x.Applicant),
			},
		}, true

	case *database.Favorite:
		if x == nil {
			return nil, true
		}
		return &entity{
			kind: KindFavorite, id: x.ID, self: x,
			fields: append(timestamps(x.Model),
				field{"applicant_id", x.ApplicantID},
				field{"job_posting_id", x.JobPostingID},
			),
			edges: []edge{
				one("applicant", x.Applicant),
				one("job_posting", x.JobPosting),
			},
		}, true
	}

	return nil, false
}

func timestamps(m database.Model) []field {
	return []field{
		{"id", m.ID},
		{"created_at", m.CreatedAt},
		{"updated_at", m.UpdatedAt},
	}
}
