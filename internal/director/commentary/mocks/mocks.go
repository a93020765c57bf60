// Package mocks provides testify-based test doubles for the commentary
// package's repository interfaces.
package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/kestrelworks/director/internal/director/commentary"
)

// TemplateRepository is a mock.Mock-backed commentary.TemplateRepository.
type TemplateRepository struct {
	mock.Mock
}

// Load implements commentary.TemplateRepository.
func (m *TemplateRepository) Load() (commentary.Templates, error) {
	args := m.Called()
	templates, _ := args.Get(0).(commentary.Templates)
	return templates, args.Error(1)
}
