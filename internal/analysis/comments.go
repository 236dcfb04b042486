package analysis

// minCommentLength filters out placeholder answers like "-" or "ok".
const minCommentLength = 3

// CollectComments gathers free-text answers from the configured comment
// columns, keyed by category, preserving category configuration order.
// Blank or near-empty cells are skipped.
func CollectComments(rows []ResponseRow, categories []Category, commentColumns map[string]string) []Comment {
	var out []Comment
	for _, cat := range categories {
		column, ok := commentColumns[cat.Name]
		if !ok {
			continue
		}
		for _, row := range rows {
			raw, ok := row.Answer(column)
			if !ok {
				continue
			}
			text := SanitizeText(raw)
			if len(text) < minCommentLength {
				continue
			}
			out = append(out, Comment{
				Category: cat.Name,
				Text:     text,
				Team:     row.Team,
				Location: row.Location,
			})
		}
	}
	return out
}
