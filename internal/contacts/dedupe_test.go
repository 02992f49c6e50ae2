package contacts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func contact(name, phone string) Contact {
	return Contact{Row: NewRow([]string{"name", PhoneNumberKey}, []string{name, phone})}
}

func TestDedupe(t *testing.T) {
	in := []Contact{
		contact("a", "+911"),
		contact("b", "+912"),
		contact("c", "+911"),
		contact("d", "+913"),
		contact("e", "+911"),
		contact("f", "+912"),
	}

	res := Dedupe(in)

	names := make([]string, len(res.Unique))
	for i, c := range res.Unique {
		names[i] = c.Value("name")
	}
	assert.Equal(t, []string{"a", "b", "d"}, names)
	assert.Equal(t, 3, res.Duplicates.Count)
	assert.Equal(t, []string{"+911", "+912"}, res.Duplicates.Numbers)
	assert.Equal(t, len(in), len(res.Unique)+res.Duplicates.Count)
}

func TestDedupe_Idempotent(t *testing.T) {
	in := []Contact{contact("a", "+911"), contact("b", "+911"), contact("c", "+912")}

	once := Dedupe(in)
	twice := Dedupe(once.Unique)

	assert.Equal(t, once.Unique, twice.Unique)
	assert.Equal(t, 0, twice.Duplicates.Count)
	assert.Empty(t, twice.Duplicates.Numbers)
}

func TestDedupe_Empty(t *testing.T) {
	res := Dedupe(nil)
	assert.Empty(t, res.Unique)
	assert.NotNil(t, res.Duplicates.Numbers)
	assert.Equal(t, 0, res.Duplicates.Count)
}

func TestDedupe_DoesNotModifyInput(t *testing.T) {
	in := []Contact{contact("a", "+911"), contact("b", "+911")}
	_ = Dedupe(in)
	assert.Len(t, in, 2)
	assert.Equal(t, "b", in[1].Value("name"))
}
