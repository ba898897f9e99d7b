package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmergencyContactValidate(t *testing.T) {
	t.Run("complete contact", func(t *testing.T) {
		c := EmergencyContact{Name: "Asha", Phone: "+919800000001", Relationship: "sister"}
		assert.NoError(t, c.Validate())
	})

	t.Run("missing phone rejected", func(t *testing.T) {
		c := EmergencyContact{Name: "Asha"}
		assert.Error(t, c.Validate())
	})

	t.Run("blank name rejected", func(t *testing.T) {
		c := EmergencyContact{Name: "   ", Phone: "+919800000001"}
		assert.Error(t, c.Validate())
	})
}

func TestContactListScan(t *testing.T) {
	raw := `[{"name":"Asha","phone":"+919800000001","relationship":"sister"}]`

	var fromBytes ContactList
	require.NoError(t, fromBytes.Scan([]byte(raw)))
	require.Len(t, fromBytes, 1)
	assert.Equal(t, "Asha", fromBytes[0].Name)

	var fromString ContactList
	require.NoError(t, fromString.Scan(raw))
	assert.Equal(t, fromBytes, fromString)

	var fromNil ContactList
	require.NoError(t, fromNil.Scan(nil))
	assert.Nil(t, fromNil)

	assert.Error(t, fromNil.Scan(42))
}

func TestContactListClone(t *testing.T) {
	orig := ContactList{{Name: "Asha", Phone: "+919800000001"}}
	snap := orig.Clone()

	orig[0].Phone = "+919999999999"
	assert.Equal(t, "+919800000001", snap[0].Phone)
}
