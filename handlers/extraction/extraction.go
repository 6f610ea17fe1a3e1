package extraction

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sahilchouksey/qbank-extract/model"
	"github.com/sahilchouksey/qbank-extract/services"
	"github.com/sahilchouksey/qbank-extract/services/spaces"
	"github.com/sahilchouksey/qbank-extract/utils/cache"
	"github.com/sahilchouksey/qbank-extract/utils/pdfvalidation"
	"github.com/sahilchouksey/qbank-extract/utils/response"
)

// requestTimeout bounds one extraction request; the pipeline's internal
// time budget sits below it so the request always answers in time
const requestTimeout = 60 * time.Second

// cacheTTL is how long extraction results are kept keyed by document hash
const cacheTTL = 24 * time.Hour

// Handler serves question extraction uploads. Store, cache and archive
// are optional: a nil collaborator disables that concern.
type Handler struct {
	extractor  *services.QuestionExtractor
	store      *services.QuestionStore
	cache      *cache.RedisCache
	archive    *spaces.Client
	scratchDir string
}

// NewHandler creates the extraction handler
func NewHandler(extractor *services.QuestionExtractor, store *services.QuestionStore, redisCache *cache.RedisCache, archive *spaces.Client, scratchDir string) *Handler {
	return &Handler{
		extractor:  extractor,
		store:      store,
		cache:      redisCache,
		archive:    archive,
		scratchDir: scratchDir,
	}
}

// UploadPDF handles POST /api/v1/questions/upload-pdf. It accepts a
// multipart "file" field plus optional course_id/subject/chapter/subtopic
// fields; when course_id is present the extracted questions are also
// persisted.
func (h *Handler) UploadPDF(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "No file uploaded")
	}

	validation, err := pdfvalidation.ValidatePDFFile(fileHeader, pdfvalidation.QuestionPaperLimits)
	if err != nil {
		return response.InternalServerError(c, "Failed to validate upload")
	}
	if !validation.Valid {
		return response.BadRequest(c, validation.Error)
	}

	content, err := readUpload(fileHeader)
	if err != nil {
		return response.InternalServerError(c, "Failed to read upload")
	}

	// Scratch copy, removed on every exit path. The hourly cleanup job
	// sweeps anything a crash leaves behind.
	scratchPath := filepath.Join(h.scratchDir, fmt.Sprintf("upload-%s.pdf", uuid.NewString()))
	if err := os.WriteFile(scratchPath, content, 0600); err != nil {
		return response.InternalServerError(c, "Failed to stage upload")
	}
	defer func() {
		if err := os.Remove(scratchPath); err != nil {
			log.Printf("[Extraction Handler] scratch cleanup failed: %v", err)
		}
	}()

	docHash := sha256Hex(content)
	ctx, cancel := context.WithTimeout(c.Context(), requestTimeout)
	defer cancel()

	questions, cached := h.lookupCache(ctx, docHash)
	if !cached {
		questions, err = h.extractor.Extract(ctx, content, fileHeader.Filename)
		if err != nil {
			var stageErrs *services.StageErrors
			if errors.As(err, &stageErrs) {
				return response.ErrorWithDetails(c, fiber.StatusInternalServerError,
					"All parsing methods (AI & Regex) failed", "EXTRACTION_FAILED",
					fmt.Sprintf("Native PDF: %v\nText AI: %v\nRegex: %v",
						stageErrs.NativePDF, stageErrs.TextAI, stageErrs.Regex))
			}
			return response.InternalServerError(c, err.Error())
		}
		h.saveCache(ctx, docHash, questions)
		h.archiveDocument(ctx, docHash, content)
	}

	saved := h.persistQuestions(ctx, c, questions)

	return response.SuccessWithMessage(c,
		fmt.Sprintf("Extracted %d questions", len(questions)),
		fiber.Map{
			"questions": questions,
			"count":     len(questions),
			"cached":    cached,
			"saved":     saved,
			"pages":     validation.PageCount,
		})
}

func readUpload(fileHeader *multipart.FileHeader) ([]byte, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// lookupCache returns a previous extraction of the same document bytes
func (h *Handler) lookupCache(ctx context.Context, docHash string) ([]model.ExtractedQuestion, bool) {
	if h.cache == nil {
		return nil, false
	}

	var questions []model.ExtractedQuestion
	if err := h.cache.GetJSON(ctx, cacheKey(docHash), &questions); err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			log.Printf("[Extraction Handler] cache lookup failed: %v", err)
		}
		return nil, false
	}
	if len(questions) == 0 {
		return nil, false
	}

	log.Printf("[Extraction Handler] cache hit for %s (%d questions)", docHash[:12], len(questions))
	return questions, true
}

// saveCache stores a result best-effort
func (h *Handler) saveCache(ctx context.Context, docHash string, questions []model.ExtractedQuestion) {
	if h.cache == nil {
		return
	}
	if err := h.cache.SetJSON(ctx, cacheKey(docHash), questions, cacheTTL); err != nil {
		log.Printf("[Extraction Handler] cache store failed: %v", err)
	}
}

// archiveDocument keeps the original document bytes best-effort
func (h *Handler) archiveDocument(ctx context.Context, docHash string, content []byte) {
	if h.archive == nil {
		return
	}
	key := fmt.Sprintf("question-papers/%s.pdf", docHash)
	if _, err := h.archive.UploadBytes(ctx, key, content, "application/pdf"); err != nil {
		log.Printf("[Extraction Handler] archive upload failed: %v", err)
	}
}

// persistQuestions writes the result to the question store when the
// request carries a course context. Persistence failures are reported
// in the response but never fail the extraction.
func (h *Handler) persistQuestions(ctx context.Context, c *fiber.Ctx, questions []model.ExtractedQuestion) int {
	if h.store == nil {
		return 0
	}
	courseID, err := strconv.ParseUint(c.FormValue("course_id"), 10, 32)
	if err != nil {
		return 0
	}

	qc := model.QuestionContext{
		CourseID: uint(courseID),
		Subject:  c.FormValue("subject"),
		Chapter:  c.FormValue("chapter"),
		Subtopic: c.FormValue("subtopic"),
	}
	saved, err := h.store.SaveQuestions(ctx, questions, qc)
	if err != nil {
		log.Printf("[Extraction Handler] persistence failed: %v", err)
		return 0
	}
	return saved
}

func cacheKey(docHash string) string {
	return "extract:" + docHash
}

func sha256Hex(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
