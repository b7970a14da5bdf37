package viewer

// Environment is what create_view tells the peer about the host
type Environment struct {
	FontFamilies      []string
	FieldMetadata     map[string]interface{}
	DefaultFontFamily string
	DefaultFontSize   int
}

// DefaultEnvironment returns generic font families and the standard book
// field metadata
func DefaultEnvironment() Environment {
	return Environment{
		FontFamilies:      []string{"serif", "sans-serif", "monospace"},
		FieldMetadata:     defaultFieldMetadata(),
		DefaultFontFamily: "serif",
		DefaultFontSize:   16,
	}
}

func field(name, datatype string, multiple bool) map[string]interface{} {
	m := map[string]interface{}{
		"name":        name,
		"datatype":    datatype,
		"is_multiple": map[string]interface{}{},
		"is_custom":   false,
	}
	if multiple {
		m["is_multiple"] = map[string]interface{}{
			"cache_to_list": ",",
			"ui_to_list":    "&",
			"list_to_ui":    " & ",
		}
	}
	return m
}

func defaultFieldMetadata() map[string]interface{} {
	return map[string]interface{}{
		"title":       field("Title", "text", false),
		"authors":     field("Authors", "text", true),
		"series":      field("Series", "series", false),
		"tags":        field("Tags", "text", true),
		"publisher":   field("Publisher", "text", false),
		"pubdate":     field("Published", "datetime", false),
		"languages":   field("Languages", "text", true),
		"rating":      field("Rating", "rating", false),
		"comments":    field("Comments", "comments", false),
		"identifiers": field("Identifiers", "text", true),
	}
}
