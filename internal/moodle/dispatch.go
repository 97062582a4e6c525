package moodle

import "strconv"

// ModuleType is the LMS's category label for a changed content item. The set is
// closed: the switch in detailRequest is exhaustive over these values, and
// anything else parses to ModuleUnknown and is skipped by the caller.
type ModuleType int

const (
	ModuleUnknown ModuleType = iota
	ModuleDiscussions
	ModuleAssign
	ModuleResource
	ModuleQuiz
	ModulePage
	ModuleURL
	ModuleBook
	ModuleLesson
)

// ParseModuleType maps the update-event name reported by
// core_course_get_updates_since to a module type.
func ParseModuleType(name string) ModuleType {
	switch name {
	case "discussions":
		return ModuleDiscussions
	case "assign":
		return ModuleAssign
	case "resource":
		return ModuleResource
	case "quiz":
		return ModuleQuiz
	case "page":
		return ModulePage
	case "url":
		return ModuleURL
	case "book":
		return ModuleBook
	case "lesson":
		return ModuleLesson
	default:
		return ModuleUnknown
	}
}

// String returns the Moodle-side event name.
func (m ModuleType) String() string {
	switch m {
	case ModuleDiscussions:
		return "discussions"
	case ModuleAssign:
		return "assign"
	case ModuleResource:
		return "resource"
	case ModuleQuiz:
		return "quiz"
	case ModulePage:
		return "page"
	case ModuleURL:
		return "url"
	case ModuleBook:
		return "book"
	case ModuleLesson:
		return "lesson"
	default:
		return "unknown"
	}
}

// detailRequest describes the web-service call that resolves one changed item
// of this module type to its full detail.
type detailRequest struct {
	Function string
	Params   map[string]string
}

// detailRequestFor builds the detail call for a module type and item id. The
// second return is false for ModuleUnknown, which has no detail endpoint.
func detailRequestFor(m ModuleType, itemID int64) (detailRequest, bool) {
	id := strconv.FormatInt(itemID, 10)

	switch m {
	case ModuleDiscussions:
		return detailRequest{
			Function: "mod_forum_get_discussion_post",
			Params:   map[string]string{"postid": id},
		}, true
	case ModuleAssign:
		return detailRequest{
			Function: "mod_assign_get_submissions",
			Params:   map[string]string{"assignmentids[0]": id},
		}, true
	case ModuleQuiz:
		return detailRequest{
			Function: "mod_quiz_get_user_attempts",
			Params:   map[string]string{"quizid": id},
		}, true
	case ModuleResource, ModulePage, ModuleURL:
		// Course-level contents call, no item-specific param.
		return detailRequest{
			Function: "core_course_get_contents",
			Params:   map[string]string{},
		}, true
	case ModuleBook:
		return detailRequest{
			Function: "mod_book_get_books_by_courses",
			Params:   map[string]string{},
		}, true
	case ModuleLesson:
		return detailRequest{
			Function: "mod_lesson_get_lesson",
			Params:   map[string]string{"lessonid": id},
		}, true
	default:
		return detailRequest{}, false
	}
}
