package cms

// Published documents only; drafts live under the drafts. id prefix.
const notDraft = `!(_id in path("drafts.**"))`

const courseProjection = `{
    _id,
    title,
    description,
    slug,
    instructor->{ _id, name, image, bio },
    price,
    difficulty,
    category,
    featuredImage,
    publishedAt,
    learningOutcomes,
    "modules": *[_type == "module" && course._ref == ^._id && ` + notDraft + `] | order(moduleNumber asc) {
      _id,
      title,
      description,
      slug,
      moduleNumber,
      estimatedDuration,
      objectives,
      featuredImage,
      isPublished,
      "lessons": *[_type == "lesson" && module._ref == ^._id && ` + notDraft + `] | order(lessonNumber asc) {
        _id,
        title,
        slug,
        lessonNumber,
        videoUrl,
        estimatedDuration,
        difficulty,
        featuredImage,
        isPublished
      }
    }
  }`

const coursesQuery = `*[_type == "course" && ` + notDraft + `] | order(_createdAt desc) {
    _id,
    title,
    slug,
    description,
    price,
    difficulty,
    category,
    learningOutcomes,
    featuredImage,
    instructor->{ _id, name, image, bio }
  }`

const courseBySlugQuery = `*[_type == "course" && slug.current == $slug && ` + notDraft + `][0] ` + courseProjection

const courseByIDQuery = `*[_type == "course" && _id == $id && ` + notDraft + `][0] ` + courseProjection

const lessonBySlugQuery = `*[_type == "lesson" && slug.current == $slug && ` + notDraft + `][0] {
    _id,
    title,
    slug,
    lessonNumber,
    videoUrl,
    estimatedDuration,
    difficulty,
    introduction,
    whatYoullCover,
    mainTeachingPoints,
    reviewAndOutcome,
    nextSteps,
    actionTask,
    additionalResources,
    featuredImage,
    isPublished,
    module->{ _id, title, slug, moduleNumber },
    course->{ _id, title, slug }
  }`

// Every lesson of a course with the number of its module, for prev/next links.
const courseLessonsQuery = `*[_type == "lesson" && course._ref == $courseId && ` + notDraft + `] {
    _id,
    title,
    "slug": slug.current,
    lessonNumber,
    "moduleNumber": module->moduleNumber
  }`

const progressByUserAndCourseQuery = `*[_type == "userProgress" && userId == $userId && courseId == $courseId][0] {
    _id,
    userId,
    courseId,
    completedLessons,
    currentModule,
    overallProgress,
    lastAccessed,
    enrollmentDate
  }`

const progressByIDQuery = `*[_type == "userProgress" && _id == $id][0] {
    _id,
    userId,
    courseId,
    completedLessons,
    currentModule,
    overallProgress,
    lastAccessed,
    enrollmentDate
  }`

const documentIDBySlugQuery = `*[_type == $type && slug.current == $slug && ` + notDraft + `][0]._id`

// Drafts are included so half-finished imports show up too.
const courseSummariesQuery = `*[_type == "course"] | order(_createdAt desc) {
    _id,
    _createdAt,
    title,
    "slug": slug.current,
    description,
    "moduleCount": count(*[_type == "module" && references(^._id)]),
    "lessonCount": count(*[_type == "lesson" && references(^._id)])
  }`
