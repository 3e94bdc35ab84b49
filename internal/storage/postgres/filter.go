package postgres

import (
	"strconv"
	"strings"

	"github.com/ButyrinIA/feedrank/internal/query"
)

type whereBuilder struct {
	clauses []string
	args    []any
}

// arg добавляет параметр и возвращает его плейсхолдер
func (w *whereBuilder) arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

func (w *whereBuilder) add(clause string) {
	w.clauses = append(w.clauses, clause)
}

// compile переводит предикат в условие WHERE
func compile(p query.Predicate) (string, []any) {
	w := &whereBuilder{}

	if p.Visibility != "" {
		w.add("visibility = " + w.arg(string(p.Visibility)))
	}
	if p.ModerationStatus != "" {
		w.add("moderation_status = " + w.arg(string(p.ModerationStatus)))
	}
	if p.Platform != "" {
		w.add("platform = " + w.arg(p.Platform))
	}
	if p.Category != "" {
		w.add("EXISTS (SELECT 1 FROM jsonb_array_elements_text(doc->'categories') c WHERE lower(c) = " + w.arg(p.Category) + ")")
	}
	if p.Hashtag != "" {
		w.add("EXISTS (SELECT 1 FROM jsonb_array_elements_text(doc->'hashtags') h WHERE ltrim(lower(h), '#') = " + w.arg(strings.ToLower(strings.TrimLeft(p.Hashtag, "#"))) + ")")
	}
	if p.MinDuration != nil {
		w.add("(doc->'media'->0->>'durationSeconds')::float8 >= " + w.arg(*p.MinDuration))
	}
	if p.MaxDuration != nil {
		w.add("(doc->'media'->0->>'durationSeconds')::float8 <= " + w.arg(*p.MaxDuration))
	}
	if p.Search != "" {
		pattern := w.arg("%" + escapeLike(p.Search) + "%")
		w.add("(doc->>'content' ILIKE " + pattern +
			" OR COALESCE(doc->>'title', '') ILIKE " + pattern +
			" OR EXISTS (SELECT 1 FROM jsonb_array_elements_text(doc->'hashtags') h WHERE h ILIKE " + pattern + "))")
	}
	if len(p.ArtistIDs) > 0 {
		w.add("artist_id = ANY(" + w.arg(p.ArtistIDs) + ")")
	}
	if p.NotViewedBy != "" {
		w.add("NOT (doc->'userEngagement'->'viewedBy' ? " + w.arg(p.NotViewedBy) + ")")
	}

	if len(w.clauses) == 0 {
		return "TRUE", nil
	}
	return strings.Join(w.clauses, " AND "), w.args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
