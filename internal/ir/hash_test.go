package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintDeterministic(t *testing.T) {
	cs := Conditions{{Value: "foo", Operator: OpLike}}

	a, err := Fingerprint(cs)
	require.NoError(t, err)
	b, err := Fingerprint(Conditions{{Value: "foo", Operator: OpLike}})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestFingerprintOrderSensitive(t *testing.T) {
	ab := Conditions{{Value: "a", Operator: OpLike}, {Value: "b", Operator: OpLike}}
	ba := Conditions{{Value: "b", Operator: OpLike}, {Value: "a", Operator: OpLike}}

	assert.NotEqual(t, MustFingerprint(ab), MustFingerprint(ba))
}

func TestFingerprintOperatorSensitive(t *testing.T) {
	like := Conditions{{Value: "a", Operator: OpLike}}
	not := Conditions{{Value: "a", Operator: OpNot}}

	assert.NotEqual(t, MustFingerprint(like), MustFingerprint(not))
}

func TestFingerprintNilEqualsEmpty(t *testing.T) {
	assert.Equal(t, MustFingerprint(nil), MustFingerprint(Conditions{}))
}

func TestHashWithDomainSeparation(t *testing.T) {
	data := []byte("[]")
	assert.NotEqual(t,
		hashWithDomain("scoped-search/conditions/v1", data),
		hashWithDomain("scoped-search/conditions/v2", data))
}
