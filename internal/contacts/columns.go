package contacts

import (
	"regexp"
	"strings"
)

// PhoneNumberKey is the field name the detected phone column is renamed to.
const PhoneNumberKey = "phone_number"

// Ordered by preference. The first pattern matching any header wins, and
// within a pattern the leftmost header wins.
var phoneColumnPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^phone_number$`),
	regexp.MustCompile(`(?i)^phone$`),
	regexp.MustCompile(`(?i)^phone[_\s-]?number$`),
	regexp.MustCompile(`(?i)^mobile$`),
	regexp.MustCompile(`(?i)^mobile[_\s-]?number$`),
	regexp.MustCompile(`(?i)^cell$`),
	regexp.MustCompile(`(?i)^cell[_\s-]?phone$`),
	regexp.MustCompile(`(?i)^contact[_\s-]?number$`),
	regexp.MustCompile(`(?i)^tel$`),
	regexp.MustCompile(`(?i)^telephone$`),
	regexp.MustCompile(`(?i)phone`),
	regexp.MustCompile(`(?i)mobile`),
	regexp.MustCompile(`(?i)number`),
}

// DetectPhoneColumn returns the header that holds phone numbers.
func DetectPhoneColumn(headers []string) (string, error) {
	i, err := detectPhoneColumnIndex(headers)
	if err != nil {
		return "", err
	}
	return headers[i], nil
}

func detectPhoneColumnIndex(headers []string) (int, error) {
	for _, re := range phoneColumnPatterns {
		for i, h := range headers {
			if re.MatchString(strings.TrimSpace(h)) {
				return i, nil
			}
		}
	}
	return -1, &DetectionError{Headers: headers}
}
