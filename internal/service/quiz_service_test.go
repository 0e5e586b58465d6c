package service

import (
	"learntwin_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleQuiz() *model.Quiz {
	q := &model.Quiz{
		PassingScore: 70,
		Questions: []model.QuizQuestion{
			{BaseModel: model.BaseModel{ID: 1}, Answer: 0, Points: 2},
			{BaseModel: model.BaseModel{ID: 2}, Answer: 1, Points: 2},
			{BaseModel: model.BaseModel{ID: 3}, Answer: 2, Points: 1},
		},
	}
	return q
}

func TestScoreSubmissionWeightsPoints(t *testing.T) {
	quiz := sampleQuiz()

	// 答对前两题（2+2 分），第三题（1 分）答错：4/5 = 80
	score := ScoreSubmission(quiz, map[uint]int{1: 0, 2: 1, 3: 0})
	assert.Equal(t, 80, score)
}

func TestScoreSubmissionAllCorrect(t *testing.T) {
	quiz := sampleQuiz()
	score := ScoreSubmission(quiz, map[uint]int{1: 0, 2: 1, 3: 2})
	assert.Equal(t, 100, score)
}

func TestScoreSubmissionMissingAnswersCountWrong(t *testing.T) {
	quiz := sampleQuiz()
	// 只答了一题，空题按错计
	score := ScoreSubmission(quiz, map[uint]int{1: 0})
	assert.Equal(t, 40, score)
}

func TestScoreSubmissionEmpty(t *testing.T) {
	quiz := sampleQuiz()
	assert.Equal(t, 0, ScoreSubmission(quiz, map[uint]int{}))
	assert.Equal(t, 0, ScoreSubmission(quiz, nil))
}

func TestScoreSubmissionNoQuestions(t *testing.T) {
	quiz := &model.Quiz{PassingScore: 70}
	assert.Equal(t, 0, ScoreSubmission(quiz, map[uint]int{1: 0}))
}

func TestScoreSubmissionIdempotent(t *testing.T) {
	quiz := sampleQuiz()
	answers := map[uint]int{1: 0, 2: 3, 3: 2}
	first := ScoreSubmission(quiz, answers)
	assert.Equal(t, first, ScoreSubmission(quiz, answers))
}

func TestScoreSubmissionDefaultsZeroPointsToOne(t *testing.T) {
	quiz := &model.Quiz{
		PassingScore: 60,
		Questions: []model.QuizQuestion{
			{BaseModel: model.BaseModel{ID: 1}, Answer: 0},
			{BaseModel: model.BaseModel{ID: 2}, Answer: 1},
		},
	}
	score := ScoreSubmission(quiz, map[uint]int{1: 0})
	assert.Equal(t, 50, score)
}

// 65 分对 70 及格线：不及格，不推进模块状态，允许重考
func TestFailingScoreBelowThreshold(t *testing.T) {
	quiz := sampleQuiz()
	// 答对第三题（1 分）+ 第一题（2 分）：3/5 = 60 < 70
	score := ScoreSubmission(quiz, map[uint]int{1: 0, 3: 2})
	assert.Equal(t, 60, score)
	assert.Less(t, score, quiz.PassingScore)
}
