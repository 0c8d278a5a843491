// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package textnorm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/lifequest/pkg/textnorm"
)

func TestName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  Shadow   Walker ", "Shadow Walker"},
		{"Ärwen", "Ärwen"},
		{"tab\tand\nnewline", "tabandnewline"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, textnorm.Name(tt.input))
		})
	}
}

func TestKey_CollidesOnCaseAndComposition(t *testing.T) {
	assert.Equal(t, textnorm.Key("Ärwen"), textnorm.Key("äRWEN"))
	assert.NotEqual(t, textnorm.Key("Arwen"), textnorm.Key("Ärwen"))
	assert.Equal(t, 5, textnorm.Length("Ärwen"))
}
