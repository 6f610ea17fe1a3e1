package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// QuestionContext identifies where a batch of extracted questions
// belongs in the course hierarchy. Supplied by the caller at upload
// time; the pipeline itself never reads it.
type QuestionContext struct {
	CourseID uint   `json:"course_id"`
	Subject  string `json:"subject"`
	Chapter  string `json:"chapter"`
	Subtopic string `json:"subtopic"`
}

// QuestionRecord is the persisted form of an ExtractedQuestion
type QuestionRecord struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CourseID uint   `gorm:"index" json:"course_id"`
	Subject  string `gorm:"size:255;index" json:"subject"`
	Chapter  string `gorm:"size:255" json:"chapter"`
	Subtopic string `gorm:"size:255" json:"subtopic"`

	Text       string         `gorm:"type:text;not null" json:"text"`
	OptionA    *string        `gorm:"type:text" json:"option_a"`
	OptionB    *string        `gorm:"type:text" json:"option_b"`
	OptionC    *string        `gorm:"type:text" json:"option_c"`
	OptionD    *string        `gorm:"type:text" json:"option_d"`
	Correct    datatypes.JSON `json:"correct"`
	Difficulty string         `gorm:"size:20;default:INTERMEDIATE" json:"difficulty"`
	Type       string         `gorm:"size:20;not null" json:"type"`
	Solution   string         `gorm:"type:text" json:"solution"`
	ExamTag    string         `gorm:"size:255" json:"exam_tag"`
	HasDiagram bool           `json:"has_diagram"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the default table name
func (QuestionRecord) TableName() string {
	return "questions"
}

// NewQuestionRecord builds a persistable record from a pipeline question
func NewQuestionRecord(q ExtractedQuestion, qc QuestionContext) (QuestionRecord, error) {
	correct, err := json.Marshal(q.Correct)
	if err != nil {
		return QuestionRecord{}, err
	}

	return QuestionRecord{
		CourseID:   qc.CourseID,
		Subject:    qc.Subject,
		Chapter:    qc.Chapter,
		Subtopic:   qc.Subtopic,
		Text:       q.Text,
		OptionA:    q.OptionA,
		OptionB:    q.OptionB,
		OptionC:    q.OptionC,
		OptionD:    q.OptionD,
		Correct:    datatypes.JSON(correct),
		Difficulty: string(q.Difficulty),
		Type:       string(q.Type),
		Solution:   q.Solution,
		ExamTag:    q.ExamTag,
		HasDiagram: q.HasDiagram,
	}, nil
}
