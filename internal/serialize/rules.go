package serialize

import "strings"

// Rules 以实体类型为键，列出序列化时排除的字段或关系路径。
// "a" 表示丢弃字段/关系 a；"a.b" 表示展开 a 时丢弃其下的 b。
type Rules map[string][]string

// 实体类型名，与 Rules 的键一致。
const (
	KindUser           = "user"
	KindEmployer       = "employer"
	KindApplicant      = "applicant"
	KindJobCategory    = "job_category"
	KindJobPosting     = "job_posting"
	KindJobApplication = "job_application"
	KindFavorite       = "favorite"
)

// DefaultRules 隐藏密码哈希，并让每对关系只沿一个方向展开。
var DefaultRules = Rules{
	KindUser: {
		"password_hash",
		"employer.user",
		"applicant.user",
	},
	KindEmployer: {
		"user.employer",
		"job_postings.employer",
	},
	KindApplicant: {
		"user.applicant",
		"job_applications.applicant",
		"favorites.applicant",
	},
	KindJobCategory: {
		"job_postings.job_category",
	},
	KindJobPosting: {
		"job_category.job_postings",
		"employer.job_postings",
		"job_applications.job_posting",
		"favorites.job_posting",
	},
	KindJobApplication: {
		"job_posting.job_applications",
		"applicant.job_applications",
	},
	KindFavorite: {
		"applicant.favorites",
		"job_posting.favorites",
	},
}

// exclusions 把一组规则拆成当前层直接排除的名字和下传给子关系的剩余路径。
type exclusions struct {
	direct map[string]bool
	nested map[string][]string
}

func splitRules(groups ...[]string) exclusions {
	ex := exclusions{direct: map[string]bool{}, nested: map[string][]string{}}
	for _, rules := range groups {
		for _, rule := range rules {
			head, rest, found := strings.Cut(rule, ".")
			if head == "" {
				continue
			}
			if !found {
				ex.direct[head] = true
				continue
			}
			ex.nested[head] = append(ex.nested[head], rest)
		}
	}
	return ex
}
