package passcode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vultbaby/otpvault/internal/passcode/entity"
)

func TestBuildCatalog_OverrideReplacesDefaults(t *testing.T) {
	cat, err := buildCatalog([]string{"login_2fa=60"})
	require.NoError(t, err)

	assert.Equal(t, 1, cat.Len())

	svc, ok := cat.Lookup("login_2fa")
	require.True(t, ok)
	assert.Equal(t, "login_2fa", svc.DisplayName)
	assert.Equal(t, 60*time.Second, svc.Validity)

	_, ok = cat.Lookup("email_verification")
	assert.False(t, ok)
}

func TestBuildCatalog_PreservesConfiguredOrder(t *testing.T) {
	cat, err := buildCatalog([]string{"signup=300", " device_pairing = 120 ", "recovery=600"})
	require.NoError(t, err)

	var ids []string
	for _, svc := range cat.List() {
		ids = append(ids, svc.ID)
	}
	assert.Equal(t, []string{"signup", "device_pairing", "recovery"}, ids)
}

func TestBuildCatalog_EmptyFallsBackToDefaults(t *testing.T) {
	// GetArray on an unset key yields one blank entry.
	cat, err := buildCatalog([]string{""})
	require.NoError(t, err)

	assert.Equal(t, 5, cat.Len())

	_, ok := cat.Lookup("email_verification")
	assert.True(t, ok)
}

func TestBuildCatalog_MalformedEntry(t *testing.T) {
	_, err := buildCatalog([]string{"login_2fa:60"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id=validity_seconds")
}

func TestBuildCatalog_NonNumericValidity(t *testing.T) {
	_, err := buildCatalog([]string{"login_2fa=sixty"})
	require.Error(t, err)
}

func TestBuildCatalog_NonPositiveValidity(t *testing.T) {
	_, err := buildCatalog([]string{"login_2fa=0"})
	require.ErrorIs(t, err, entity.ErrInvalidValidity)

	_, err = buildCatalog([]string{"login_2fa=-30"})
	require.ErrorIs(t, err, entity.ErrInvalidValidity)
}
