package form

import "strings"

// ParseQuestions converts a questions sheet into questions. Rows without
// a name are skipped, as are repeated names.
func ParseQuestions(s Sheet) []Question {
	var res []Question
	seen := make(map[string]struct{})
	listCol := listColumn(s)
	labelCol := labelColumn(s)
	for i := range s.Rows {
		name := s.Value(i, "name")
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		q := Question{
			Name:        name,
			Type:        s.Value(i, "type"),
			Required:    strings.EqualFold(s.Value(i, "required"), "yes"),
			Constraint:  s.Value(i, "constraint"),
			Calculation: s.Value(i, "calculation"),
		}
		if labelCol != "" {
			q.Label = s.Value(i, labelCol)
		}
		if listCol != "" {
			q.ListName = s.Value(i, listCol)
		}
		res = append(res, q)
	}
	return res
}

// ParseChoices converts a choices sheet into choices. The second value is
// false when the sheet has neither "list name" nor "list_name" column.
func ParseChoices(s Sheet) ([]Choice, bool) {
	listCol := listColumn(s)
	if listCol == "" {
		return nil, false
	}
	valueCol := "value"
	if !s.HasColumn(valueCol) {
		valueCol = "name"
	}
	labelCol := labelColumn(s)

	var res []Choice
	for i := range s.Rows {
		c := Choice{
			ListName: s.Value(i, listCol),
			Value:    s.Value(i, valueCol),
		}
		if labelCol != "" {
			c.Label = s.Value(i, labelCol)
		}
		if c.ListName == "" {
			continue
		}
		res = append(res, c)
	}
	return res, true
}

// Labels returns labels of the choices of a list.
func Labels(cs []Choice, listName string) []string {
	var res []string
	for _, v := range cs {
		if v.ListName == listName {
			res = append(res, v.Label)
		}
	}
	return res
}

func listColumn(s Sheet) string {
	for _, v := range []string{"list name", "list_name"} {
		if s.HasColumn(v) {
			return v
		}
	}
	return ""
}

// labelColumn prefers "label", then the first translated label.
func labelColumn(s Sheet) string {
	if s.HasColumn("label") {
		return "label"
	}
	for _, v := range s.Header {
		if strings.HasPrefix(v, "label::") {
			return v
		}
	}
	return ""
}
