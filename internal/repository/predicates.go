package repository

import "strconv"

// Two comment-presence predicates exist because listings and totals have
// always disagreed about empty comments: the listing form accepts any
// non-null comment, including "", while the counting form requires at
// least one character. StoreOptions.ConsistentCommentFilter makes listings
// use the counting form as well.
const (
	CommentPredicateListing  = "feedback IS NOT NULL AND (feedback <> '' OR feedback <> ' ')"
	CommentPredicateCounting = "LENGTH(feedback) > 0"
)

// whereBuilder accumulates AND-joined conditions and positional arguments.
type whereBuilder struct {
	conditions []string
	args       []any
}

// arg appends v and returns its placeholder.
func (w *whereBuilder) arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

func (w *whereBuilder) add(condition string) {
	w.conditions = append(w.conditions, "("+condition+")")
}

func (w *whereBuilder) String() string {
	if len(w.conditions) == 0 {
		return ""
	}
	out := " WHERE " + w.conditions[0]
	for _, c := range w.conditions[1:] {
		out += " AND " + c
	}
	return out
}
