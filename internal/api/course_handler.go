package api

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/MostTP/EduWave-Backend/internal/service"
)

type CourseHandler struct {
	courseService service.CourseService
	validate      *validator.Validate
}

func NewCourseHandler(courseService service.CourseService) *CourseHandler {
	return &CourseHandler{
		courseService: courseService,
		validate:      validator.New(),
	}
}

type CourseRequest struct {
	Title       string `json:"title" validate:"required,min=3"`
	Description string `json:"description"`
	LessonCount int    `json:"lessonCount" validate:"required,min=1"`
	Published   bool   `json:"published"`
}

func (h *CourseHandler) Create(c *fiber.Ctx) error {
	actor, ok := CurrentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Authentication required")
	}

	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Cannot parse JSON body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid input: "+err.Error())
	}

	course, err := h.courseService.CreateCourse(c.Context(), actor, service.CourseInput{
		Title:       req.Title,
		Description: req.Description,
		LessonCount: req.LessonCount,
		Published:   req.Published,
	})
	if err != nil {
		return failFromService(c, err)
	}
	return respond(c, fiber.StatusCreated, "Course created", fiber.Map{"course": course})
}

func (h *CourseHandler) Update(c *fiber.Ctx) error {
	actor, ok := CurrentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Authentication required")
	}

	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid course id")
	}

	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Cannot parse JSON body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid input: "+err.Error())
	}

	course, err := h.courseService.UpdateCourse(c.Context(), actor, courseID, service.CourseInput{
		Title:       req.Title,
		Description: req.Description,
		LessonCount: req.LessonCount,
		Published:   req.Published,
	})
	if err != nil {
		return failFromService(c, err)
	}
	return respond(c, fiber.StatusOK, "Course updated", fiber.Map{"course": course})
}

func (h *CourseHandler) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	courses, meta, err := h.courseService.ListCourses(c.Context(), page, limit)
	if err != nil {
		return failFromService(c, err)
	}
	return respond(c, fiber.StatusOK, "Courses", fiber.Map{"courses": courses, "meta": meta})
}

func (h *CourseHandler) Get(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid course id")
	}

	course, err := h.courseService.GetCourse(c.Context(), courseID)
	if err != nil {
		return failFromService(c, err)
	}

	data := fiber.Map{"course": course}
	// enrolled viewers also get their own progress
	if user, ok := CurrentUser(c); ok {
		if progress, err := h.courseService.GetProgress(c.Context(), user.ID, courseID); err == nil {
			data["progress"] = progress
		}
	}
	return respond(c, fiber.StatusOK, "Course", data)
}

type ProgressRequest struct {
	CompletedLessons int `json:"completedLessons"`
}

func (h *CourseHandler) UpdateProgress(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Authentication required")
	}

	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid course id")
	}

	var req ProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Cannot parse JSON body")
	}

	enrollment, err := h.courseService.UpdateProgress(c.Context(), user.ID, courseID, req.CompletedLessons)
	if err != nil {
		return failFromService(c, err)
	}
	return respond(c, fiber.StatusOK, "Progress updated", fiber.Map{"progress": enrollment})
}

func (h *CourseHandler) GetProgress(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Authentication required")
	}

	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid course id")
	}

	enrollment, err := h.courseService.GetProgress(c.Context(), user.ID, courseID)
	if err != nil {
		return failFromService(c, err)
	}
	return respond(c, fiber.StatusOK, "Progress", fiber.Map{"progress": enrollment})
}
