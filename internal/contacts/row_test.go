package contacts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRow_OrderAndSet(t *testing.T) {
	var r Row
	r.Set("zeta", "1")
	r.Set("alpha", "2")
	r.Set("zeta", "3")

	assert.Equal(t, []string{"zeta", "alpha"}, r.Keys())
	assert.Equal(t, []string{"3", "2"}, r.Values())
	assert.Equal(t, 2, r.Len())

	_, ok := r.Get("missing")
	assert.False(t, ok)
}

func TestRow_CloneIsIndependent(t *testing.T) {
	r := NewRow([]string{"a", "b"}, []string{"1"})
	c := r.Clone()
	c.Set("a", "changed")
	c.Set("c", "new")

	assert.Equal(t, "1", r.Value("a"))
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, "", r.Value("b"))
}

func TestRow_JSONKeepsOrder(t *testing.T) {
	r := NewRow([]string{"name", "phone_number", "city"}, []string{"Amol", "+917795957544", `Pune "east"`})

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Amol","phone_number":"+917795957544","city":"Pune \"east\""}`, string(data))

	var back Row
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, r.Keys(), back.Keys())
	assert.Equal(t, r.Values(), back.Values())
}

func TestRow_UnmarshalScalars(t *testing.T) {
	var r Row
	require.NoError(t, json.Unmarshal([]byte(`{"b":12,"a":null,"c":true,"d":1.50}`), &r))
	assert.Equal(t, []string{"b", "a", "c", "d"}, r.Keys())
	assert.Equal(t, []string{"12", "", "true", "1.50"}, r.Values())

	assert.Error(t, json.Unmarshal([]byte(`{"x":{"y":1}}`), &r))
	assert.Error(t, json.Unmarshal([]byte(`["x"]`), &r))
}

func TestContact_JSON(t *testing.T) {
	contacts := []Contact{
		{Row: NewRow([]string{"name", "phone_number"}, []string{"a", "+919122833772"}), Line: 7},
	}
	data, err := json.Marshal(contacts)
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"a","phone_number":"+919122833772"}]`, string(data))

	var back []Contact
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, 1)
	assert.Equal(t, "+919122833772", back[0].PhoneNumber())
	assert.Equal(t, 0, back[0].Line)
}
