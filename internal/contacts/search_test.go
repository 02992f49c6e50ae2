package contacts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	res, err := Parse("Name,City,Phone\nAmol Sharma,Pune,9122833772\nShashwat,Delhi,7795957544\nPriya,Mumbai,+14155550123\n", Options{})
	require.NoError(t, err)

	names := func(cs []Contact) []string {
		out := make([]string, len(cs))
		for i, c := range cs {
			out[i] = c.Value("Name")
		}
		return out
	}

	assert.Equal(t, []string{"Amol Sharma", "Shashwat", "Priya"}, names(Search(res.Contacts, "")))
	assert.Equal(t, []string{"Amol Sharma"}, names(Search(res.Contacts, "amoll", "Name")))
	assert.Equal(t, []string{"Shashwat"}, names(Search(res.Contacts, "delhi")))
	assert.Empty(t, Search(res.Contacts, "delhi", "Name"))
	assert.Equal(t, []string{"Priya"}, names(Search(res.Contacts, "+1415", PhoneNumberKey)))
	assert.Empty(t, SearchThreshold(res.Contacts, "mumbay", 0, "City"))
	assert.Equal(t, []string{"Priya"}, names(SearchThreshold(res.Contacts, "mumbay", 3, "City")))
}
