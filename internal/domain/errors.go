package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session does not exist or belongs to another user.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrSubjectNotFound indicates the subject does not exist.
	ErrSubjectNotFound = errors.New("subject not found")
	// ErrMaterialNotFound indicates the material does not exist.
	ErrMaterialNotFound = errors.New("material not found")
	// ErrBookNotFound indicates the book does not exist.
	ErrBookNotFound = errors.New("book not found")
	// ErrEmptyQuiz is returned when a quiz without questions is started.
	ErrEmptyQuiz = errors.New("quiz has no questions")
	// ErrAttemptsExhausted blocks a new session once the attempt limit is reached.
	ErrAttemptsExhausted = errors.New("maximum quiz attempts reached")
	// ErrInvalidState reports an out-of-order call on a session.
	ErrInvalidState = errors.New("invalid session state")
	// ErrNilAnswer is returned when an answer carries no value.
	ErrNilAnswer = errors.New("answer value is required")
	// ErrPersistence wraps collaborator write failures after a quiz completes.
	ErrPersistence = errors.New("persistence failure")
	// ErrKeyNotFound is returned by key-value stores for missing keys.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidCredentials is returned when sign-in fails.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when signing up with a registered email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUnauthenticated is returned for missing, expired or revoked tokens.
	ErrUnauthenticated = errors.New("unauthenticated")
)
