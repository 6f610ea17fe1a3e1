package services

import (
	"context"
	"fmt"
	"log"

	"github.com/sahilchouksey/qbank-extract/model"
	"gorm.io/gorm"
)

// QuestionStore persists extracted questions
type QuestionStore struct {
	db *gorm.DB
}

// NewQuestionStore creates a question store over a GORM connection
func NewQuestionStore(db *gorm.DB) *QuestionStore {
	return &QuestionStore{db: db}
}

// insertBatchSize bounds the multi-row insert so large documents don't
// blow past the postgres parameter limit
const insertBatchSize = 100

// SaveQuestions bulk-inserts a question list under the given context.
// Returns the number of rows written.
func (s *QuestionStore) SaveQuestions(ctx context.Context, questions []model.ExtractedQuestion, qc model.QuestionContext) (int, error) {
	if len(questions) == 0 {
		return 0, nil
	}

	records := make([]model.QuestionRecord, 0, len(questions))
	for i, q := range questions {
		record, err := model.NewQuestionRecord(q, qc)
		if err != nil {
			return 0, fmt.Errorf("failed to build record for question %d: %w", i, err)
		}
		records = append(records, record)
	}

	if err := s.db.WithContext(ctx).CreateInBatches(&records, insertBatchSize).Error; err != nil {
		return 0, fmt.Errorf("failed to insert questions: %w", err)
	}

	log.Printf("[Question Store] Inserted %d questions (course=%d subject=%q)", len(records), qc.CourseID, qc.Subject)
	return len(records), nil
}
