package util

import "errors"

var (
	ErrUserNotFound         = errors.New("用户不存在")
	ErrEmailRegistered      = errors.New("该邮箱已被注册")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrCourseNotFound       = errors.New("course not found")
	ErrModuleNotFound       = errors.New("module not found")
	ErrLessonNotFound       = errors.New("lesson not found")
	ErrQuizNotFound         = errors.New("quiz not found")
	ErrNotEnrolled          = errors.New("not enrolled in this course")
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrAttemptClosed        = errors.New("attempt already submitted or expired")
	ErrAttemptInProgress    = errors.New("an attempt is already in progress")
	ErrMintAlreadyConfirmed = errors.New("mint already confirmed")
	ErrMintNotFound         = errors.New("mint record not found")
)
