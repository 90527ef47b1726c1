package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/edusync-lms/edusync/internal/api/http"
	"github.com/edusync-lms/edusync/internal/assessment"
	"github.com/edusync-lms/edusync/internal/auth"
	"github.com/edusync-lms/edusync/internal/config"
	"github.com/edusync-lms/edusync/internal/content"
	"github.com/edusync-lms/edusync/internal/course"
	"github.com/edusync-lms/edusync/internal/db"
	"github.com/edusync-lms/edusync/internal/rbac"
	"github.com/edusync-lms/edusync/internal/telemetry"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	assessments := assessment.NewSQLStore(dbh)
	courses := course.NewSQLStore(dbh)
	contents := content.NewSQLStore(dbh)
	users := auth.NewSQLUserStore(dbh)

	// --- Telemetry sinks ---
	sinks := telemetry.Multi{telemetry.NewEventLog(dbh)}
	if cfg.AMQPURL != "" {
		amqpSink, err := telemetry.NewAMQPSink(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			log.Fatalf("amqp sink: %v", err)
		}
		defer amqpSink.Close()
		sinks = append(sinks, amqpSink)
	}

	// --- Auth ---
	authSvc := auth.NewService(cfg.AuthHMACSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/Auth/register", auth.RegisterHandler(users))
	r.Post("/Auth/login", auth.LoginHandler(authSvc, users))

	// Protected API (JWT → session+role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.Middleware(authSvc))

		pr.Get("/profile", auth.ProfileHandler(users))

		// Courses
		pr.With(rbac.Require("course:create")).
			Post("/CreateCourse", api.CreateCourseHandler(courses))
		pr.With(rbac.Require("course:update")).
			Put("/UpdateCourse/{courseID}", api.UpdateCourseHandler(courses))
		pr.With(rbac.Require("course:delete")).
			Delete("/DeleteCourse/{courseID}", api.DeleteCourseHandler(courses))
		pr.With(rbac.RequireAny("course:browse", "course:view")).
			Get("/Course/{courseID}", api.GetCourseHandler(courses))
		pr.With(rbac.Require("course:browse")).
			Get("/AllCourses", api.AllCoursesHandler(courses))
		pr.With(rbac.Require("course:manage")).
			Get("/MyCourses", api.MyCoursesHandler(courses))
		pr.With(rbac.Require("course:enroll")).
			Post("/Course/{courseID}/Enroll", api.EnrollHandler(courses))
		pr.With(rbac.Require("course:enroll")).
			Get("/MyEnrollments", api.MyEnrollmentsHandler(courses))

		// Course groups
		pr.With(rbac.Require("course:create")).
			Post("/CreateCourseGroup", api.CreateCourseGroupHandler(courses))
		pr.With(rbac.RequireAny("course:browse", "course:view")).
			Get("/CourseGroup/{groupID}", api.GetCourseGroupHandler(courses))
		pr.With(rbac.RequireAny("course:browse", "course:view")).
			Get("/CourseGroup/{groupID}/Courses", api.CourseGroupCoursesHandler(courses))
		pr.With(rbac.Require("course:update")).
			Put("/UpdateCourseGroup/{groupID}", api.UpdateCourseGroupHandler(courses))
		pr.With(rbac.Require("course:delete")).
			Delete("/DeleteCourseGroup/{groupID}", api.DeleteCourseGroupHandler(courses))
		pr.With(rbac.Require("course:manage")).
			Get("/MyCourseGroups", api.MyCourseGroupsHandler(courses))

		// Content
		pr.With(rbac.Require("content:create")).
			Post("/Course/{courseID}/CreateContent", api.CreateContentHandler(contents, courses))
		pr.With(rbac.Require("content:view")).
			Get("/Content/{contentID}", api.GetContentHandler(contents))
		pr.With(rbac.Require("content:view")).
			Get("/Course/{courseID}/GetCourseAllMedia", api.CourseMediaHandler(contents))
		pr.With(rbac.Require("content:delete")).
			Delete("/CourseContent/{contentID}", api.DeleteContentHandler(contents, courses))

		// Assessments
		pr.With(rbac.Require("assessment:view")).
			Get("/Assessments/{courseID}", api.GetAssessmentHandler(assessments))
		pr.With(rbac.Require("assessment:create")).
			Post("/Assessments/{courseID}/CreateAssessment", api.CreateAssessmentHandler(assessments, courses))
		pr.With(rbac.Require("assessment:update")).
			Put("/Assessments/{courseID}/UpdateAssessment", api.UpdateAssessmentHandler(assessments, courses))

		// Student attempt flow
		pr.With(rbac.Require("event:emit")).
			Post("/AssessmentEvents/QuestionAnswered", api.QuestionAnsweredHandler(sinks))
		pr.With(rbac.Require("event:emit")).
			Post("/AssessmentEvents/AssessmentCompleted", api.AssessmentCompletedHandler(sinks))
		pr.With(rbac.Require("attempt:submit")).
			Post("/{assessmentID}/SubmitAssessment", api.SubmitAssessmentHandler(assessments))
		pr.With(rbac.Require("result:view-own")).
			Get("/student/results", api.StudentResultsHandler(assessments))

		// Instructor analytics
		pr.With(rbac.Require("analytics:view")).
			Get("/Instructor/Analytics", api.InstructorAnalyticsHandler(courses))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
