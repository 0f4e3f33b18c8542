package progressValidator

import (
	"strings"

	"fstop/middleware"
	"fstop/validators"

	"github.com/gofiber/fiber/v2"
)

const (
	UserProgressKey   = "validatedUserProgress"
	CompleteLessonKey = "validatedCompleteLesson"
	CurrentModuleKey  = "validatedCurrentModule"
)

type UserProgressQuery struct {
	UserID   string `query:"userId"`
	CourseID string `query:"courseId"`
}

type CompleteLessonRequest struct {
	CourseSlug string
	LessonID   string
}

type CurrentModuleRequest struct {
	CourseSlug string `json:"-"`
	ModuleID   string `json:"moduleId" validate:"required,max=128"`
}

// UserProgress answers with a bare {error} body to keep the public contract.
func UserProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UserProgressQuery)
		if err := c.QueryParser(reqData); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid query parameters"})
		}
		reqData.UserID = strings.TrimSpace(reqData.UserID)
		reqData.CourseID = strings.TrimSpace(reqData.CourseID)
		if reqData.UserID == "" || reqData.CourseID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "userId and courseId are required"})
		}

		c.Locals(UserProgressKey, reqData)
		return c.Next()
	}
}

func CompleteLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := &CompleteLessonRequest{
			CourseSlug: strings.TrimSpace(c.Params("slug")),
			LessonID:   strings.TrimSpace(c.Params("lessonId")),
		}

		errors := make(map[string]string)
		if reqData.CourseSlug == "" {
			errors["slug"] = "Course slug is required!"
		}
		if reqData.LessonID == "" {
			errors["lessonId"] = "Lesson ID is required!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals(CompleteLessonKey, reqData)
		return c.Next()
	}
}

func SetCurrentModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CurrentModuleRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.CourseSlug = strings.TrimSpace(c.Params("slug"))
		reqData.ModuleID = strings.TrimSpace(reqData.ModuleID)

		errors := validators.Struct(reqData)
		if reqData.CourseSlug == "" {
			if errors == nil {
				errors = make(map[string]string)
			}
			errors["slug"] = "Course slug is required!"
		}
		if errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals(CurrentModuleKey, reqData)
		return c.Next()
	}
}
