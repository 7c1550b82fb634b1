package app

import (
	"math/rand"
	"sync"
	"time"

	"cquiz-service/internal/domain"
)

// Bank is a fixed question bank that hands out shuffled copies.
type Bank struct {
	questions []domain.Question

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewBank(questions []domain.Question) *Bank {
	return NewBankWithSource(questions, rand.NewSource(time.Now().UnixNano()))
}

// NewBankWithSource allows deterministic shuffles in tests.
func NewBankWithSource(questions []domain.Question, src rand.Source) *Bank {
	return &Bank{
		questions: cloneQuestions(questions),
		rnd:       rand.New(src),
	}
}

// Questions returns the bank in its defined order.
func (b *Bank) Questions() []domain.Question {
	return cloneQuestions(b.questions)
}

// Generate returns a Fisher-Yates permutation of the bank. Option order is kept.
func (b *Bank) Generate() []domain.Question {
	out := cloneQuestions(b.questions)

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(out) - 1; i > 0; i-- {
		j := b.rnd.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func cloneQuestions(in []domain.Question) []domain.Question {
	out := make([]domain.Question, len(in))
	for i, q := range in {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}

// DefaultQuestions is the C structures and functions quiz.
func DefaultQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q1", Question: "What keyword is used to define a structure in C?", Options: []string{"define", "class", "struct", "object"}, CorrectAnswer: "struct"},
		{ID: "q2", Question: "How do you access a member of a structure using a pointer?", Options: []string{"ptr.member", "ptr->member", "ptr::member", "*ptr.member"}, CorrectAnswer: "ptr->member"},
		{ID: "q3", Question: "What is the correct way to declare a function in C?", Options: []string{"function int add()", "int add()", "def add():", "int add() {}"}, CorrectAnswer: "int add()"},
		{ID: "q4", Question: "Which operator is used to get the address of a variable?", Options: []string{"*", "&", "#", "@"}, CorrectAnswer: "&"},
		{ID: "q5", Question: "What does the 'sizeof' operator return for a structure?", Options: []string{"Number of members", "Size in bytes", "Memory address", "Structure name"}, CorrectAnswer: "Size in bytes"},
		{ID: "q6", Question: "How do you pass a structure to a function by reference?", Options: []string{"func(struct s)", "func(&s)", "func(*s)", "func(s*)"}, CorrectAnswer: "func(&s)"},
		{ID: "q7", Question: "What is function prototype in C?", Options: []string{"Function definition", "Function declaration", "Function call", "Function pointer"}, CorrectAnswer: "Function declaration"},
		{ID: "q8", Question: "Can a structure contain a pointer to itself?", Options: []string{"Yes", "No", "Only in C++", "Depends on compiler"}, CorrectAnswer: "Yes"},
		{ID: "q9", Question: "What is the default return type of a function in C?", Options: []string{"void", "int", "char", "float"}, CorrectAnswer: "int"},
		{ID: "q10", Question: "How do you initialize a structure variable?", Options: []string{"struct name = {values}", "name = {values}", "Both A and B", "None of the above"}, CorrectAnswer: "Both A and B"},
		{ID: "q11", Question: "What is recursion in C functions?", Options: []string{"Function calling another function", "Function calling itself", "Function with no return", "Function with multiple parameters"}, CorrectAnswer: "Function calling itself"},
		{ID: "q12", Question: "Can a function return a structure in C?", Options: []string{"Yes", "No", "Only pointers", "Only arrays"}, CorrectAnswer: "Yes"},
		{ID: "q13", Question: "What is the scope of variables declared inside a function?", Options: []string{"Global", "Local", "Static", "External"}, CorrectAnswer: "Local"},
		{ID: "q14", Question: "How do you create an array of structures?", Options: []string{"struct name[size]", "struct[size] name", "name struct[size]", "[size] struct name"}, CorrectAnswer: "struct name[size]"},
		{ID: "q15", Question: "What happens when you don't return a value from a non-void function?", Options: []string{"Compilation error", "Runtime error", "Undefined behavior", "Returns 0"}, CorrectAnswer: "Undefined behavior"},
	}
}
