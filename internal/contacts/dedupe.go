package contacts

// DedupeResult holds the first occurrence of every phone number and a report
// of the rest.
type DedupeResult struct {
	Unique     []Contact       `json:"unique"`
	Duplicates DuplicateReport `json:"duplicates"`
}

// Dedupe keeps the first contact for each phone_number value, preserving
// input order. The input slice is not modified.
//
// len(Unique) + Duplicates.Count == len(contacts).
func Dedupe(contacts []Contact) DedupeResult {
	res := DedupeResult{
		Unique:     make([]Contact, 0, len(contacts)),
		Duplicates: DuplicateReport{Numbers: []string{}},
	}
	seen := make(map[string]bool, len(contacts))
	reported := make(map[string]bool)

	for _, c := range contacts {
		phone := c.PhoneNumber()
		if !seen[phone] {
			seen[phone] = true
			res.Unique = append(res.Unique, c)
			continue
		}
		res.Duplicates.Count++
		if !reported[phone] {
			reported[phone] = true
			res.Duplicates.Numbers = append(res.Duplicates.Numbers, phone)
		}
	}
	return res
}
