// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/lifequest/pkg/pointer"
)

func TestPointerHelpers(t *testing.T) {
	assert.Equal(t, "seeker", *pointer.To("seeker"))
	assert.Equal(t, "", pointer.Val[string](nil))
	assert.Nil(t, pointer.NilIfZero(""))
	assert.Equal(t, "ok", *pointer.NilIfZero("ok"))

	assert.False(t, pointer.Changed[string](nil, "Seeker"))
	assert.False(t, pointer.Changed(pointer.To("Seeker"), "Seeker"))
	assert.True(t, pointer.Changed(pointer.To("Wanderer"), "Seeker"))
}
