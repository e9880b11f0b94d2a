package book

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/studentportal/portal-api/model"
	"github.com/studentportal/portal-api/utils/response"
	"github.com/studentportal/portal-api/utils/validation"
	"gorm.io/gorm"
)

// BookHandler handles book and author catalog CRUD
type BookHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewBookHandler creates a new book handler
func NewBookHandler(db *gorm.DB) *BookHandler {
	return &BookHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// BookRequest represents a book create or update body
type BookRequest struct {
	Title    string `json:"title" validate:"required,min=1,max=200"`
	CourseID uint   `json:"course_id" validate:"required"`
	AuthorID uint   `json:"author_id" validate:"required"`
}

// AuthorRequest represents an author create or update body
type AuthorRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
}

// List handles GET /api/v1/books. Optional ?course_id= filter.
func (h *BookHandler) List(c *fiber.Ctx) error {
	query := h.db.Model(&model.Book{}).Preload("Author").Preload("Course")
	if courseStr := c.Query("course_id"); courseStr != "" {
		courseID, err := strconv.ParseUint(courseStr, 10, 32)
		if err != nil {
			return response.BadRequest(c, "Invalid course_id filter")
		}
		query = query.Where("course_id = ?", uint(courseID))
	}

	var books []model.Book
	if err := query.Order("title ASC").Find(&books).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch books")
	}

	return response.Success(c, books)
}

// Get handles GET /api/v1/books/:id
func (h *BookHandler) Get(c *fiber.Ctx) error {
	bookID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid book id")
	}

	var book model.Book
	if err := h.db.Preload("Author").Preload("Course").First(&book, uint(bookID)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Book not found")
		}
		return response.InternalServerError(c, "Failed to fetch book")
	}

	return response.Success(c, book)
}

// Create handles POST /api/v1/books (admin only)
func (h *BookHandler) Create(c *fiber.Ctx) error {
	var req BookRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if err := h.ensureReferences(req.CourseID, req.AuthorID); err != nil {
		return response.BadRequest(c, err.Error())
	}

	book := model.Book{
		Title:    validation.SanitizeString(req.Title),
		CourseID: req.CourseID,
		AuthorID: req.AuthorID,
	}
	if err := h.db.Create(&book).Error; err != nil {
		return response.InternalServerError(c, "Failed to create book")
	}

	return response.Created(c, book)
}

// Update handles PUT /api/v1/books/:id (admin only)
func (h *BookHandler) Update(c *fiber.Ctx) error {
	bookID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid book id")
	}

	var req BookRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var book model.Book
	if err := h.db.First(&book, uint(bookID)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Book not found")
		}
		return response.InternalServerError(c, "Failed to fetch book")
	}

	if err := h.ensureReferences(req.CourseID, req.AuthorID); err != nil {
		return response.BadRequest(c, err.Error())
	}

	book.Title = validation.SanitizeString(req.Title)
	book.CourseID = req.CourseID
	book.AuthorID = req.AuthorID
	if err := h.db.Save(&book).Error; err != nil {
		return response.InternalServerError(c, "Failed to update book")
	}

	return response.SuccessWithMessage(c, "Book updated successfully", book)
}

// Delete handles DELETE /api/v1/books/:id (admin only)
func (h *BookHandler) Delete(c *fiber.Ctx) error {
	bookID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid book id")
	}

	result := h.db.Delete(&model.Book{}, uint(bookID))
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to delete book")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Book not found")
	}

	return response.NoContent(c)
}

// ListAuthors handles GET /api/v1/authors
func (h *BookHandler) ListAuthors(c *fiber.Ctx) error {
	var authors []model.Author
	if err := h.db.Order("full_name ASC").Find(&authors).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch authors")
	}

	return response.Success(c, authors)
}

// CreateAuthor handles POST /api/v1/authors (admin only)
func (h *BookHandler) CreateAuthor(c *fiber.Ctx) error {
	var req AuthorRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	author := model.Author{FullName: validation.SanitizeString(req.FullName)}
	if err := h.db.Create(&author).Error; err != nil {
		return response.InternalServerError(c, "Failed to create author")
	}

	return response.Created(c, author)
}

// DeleteAuthor handles DELETE /api/v1/authors/:id (admin only)
func (h *BookHandler) DeleteAuthor(c *fiber.Ctx) error {
	authorID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid author id")
	}

	result := h.db.Delete(&model.Author{}, uint(authorID))
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to delete author")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Author not found")
	}

	return response.NoContent(c)
}

func (h *BookHandler) ensureReferences(courseID, authorID uint) error {
	var count int64
	if err := h.db.Model(&model.Course{}).Where("id = ?", courseID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errUnknownCourse
	}
	if err := h.db.Model(&model.Author{}).Where("id = ?", authorID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errUnknownAuthor
	}
	return nil
}

var (
	errUnknownCourse = errors.New("unknown course id")
	errUnknownAuthor = errors.New("unknown author id")
)
