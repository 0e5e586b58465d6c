package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeQuizCompletionsIsUnion(t *testing.T) {
	db := map[uint]bool{1: true, 2: true}
	cache := map[uint]bool{2: true, 3: true}

	merged := MergeQuizCompletions(db, cache)

	assert.True(t, merged[1])
	assert.True(t, merged[2])
	assert.True(t, merged[3])
	assert.False(t, merged[4])
}

func TestMergeQuizCompletionsNeverRegresses(t *testing.T) {
	// 某一来源缺数据时不得回退另一来源已记录的完成状态
	db := map[uint]bool{1: true}
	cache := map[uint]bool{}
	assert.True(t, MergeQuizCompletions(db, cache)[1])

	db = map[uint]bool{}
	cache = map[uint]bool{1: true}
	assert.True(t, MergeQuizCompletions(db, cache)[1])
}

func TestMergeQuizCompletionsEmptySources(t *testing.T) {
	merged := MergeQuizCompletions(nil, nil)
	assert.Empty(t, merged)
}
