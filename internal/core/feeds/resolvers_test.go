package feeds

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionResolver_DropsEmptyAndRepeatedIDs(t *testing.T) {
	r := NewSubscriptionResolver(&fakeSubscriptions{
		communities: map[string][]string{"u": {"c2", "", "c1", "c2"}},
	}, 0, discardLogger())

	assert.Equal(t, []string{"c2", "c1"}, r.Resolve(context.Background(), "u"))
}

func TestSubscriptionResolver_FailureDegradesToEmpty(t *testing.T) {
	r := NewSubscriptionResolver(&fakeSubscriptions{err: errStoreDown}, 0, discardLogger())

	assert.Empty(t, r.Resolve(context.Background(), "u"))
}

func TestFollowResolver_UnknownUser(t *testing.T) {
	r := NewFollowResolver(&fakeFollows{following: map[string][]string{}}, 0, discardLogger())

	assert.Empty(t, r.Resolve(context.Background(), "nobody"))
}

func TestFollowResolver_FailureDegradesToEmpty(t *testing.T) {
	r := NewFollowResolver(&fakeFollows{err: errStoreDown}, 0, nil)

	assert.Empty(t, r.Resolve(context.Background(), "u"))
}
