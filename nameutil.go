package ucdp

import "strings"

// Known identifier suffixes, checked longest first.
var nameSuffixes = []string{"_io", "_i", "_o", "_s", "_r", "_p", "_c"}

// SplitSuffix splits a name into its base and its well-known suffix
// ("data_i" -> "data", "_i"). Names without a known suffix return an empty
// suffix.
func SplitSuffix(name string) (base, suffix string) {
	for _, s := range nameSuffixes {
		if len(name) > len(s) && strings.HasSuffix(name, s) {
			return name[:len(name)-len(s)], s
		}
	}
	return name, ""
}

// JoinNames joins non-empty name parts with sep.
func JoinNames(sep string, parts ...string) string {
	nonempty := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			nonempty = append(nonempty, p)
		}
	}
	return strings.Join(nonempty, sep)
}

// ValidateIdentifier checks that name is a legal identifier: a letter
// followed by letters, digits or underscores.
func ValidateIdentifier(name string) error {
	if name == "" {
		return typeErrf("invalid identifier %q", name)
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
		case r == '_' && i > 0:
		case r >= '0' && r <= '9' && i > 0:
		default:
			return typeErrf("invalid identifier %q", name)
		}
	}
	return nil
}

// toSnakeCase converts CamelCase to snake_case ("MyStruct" -> "my_struct").
func toSnakeCase(name string) string {
	var sb strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				sb.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func stripInstPrefix(name string) string {
	return strings.TrimPrefix(name, "u_")
}
