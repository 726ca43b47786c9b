package main

import (
	"context"
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"campusattend/internal/attendance"
	"campusattend/internal/auth"
	"campusattend/internal/cloudinary"
	"campusattend/internal/config"
	"campusattend/internal/faceclient"
	"campusattend/internal/httpmiddleware"
	"campusattend/internal/notify"
	"campusattend/internal/queue"
	"campusattend/internal/roster"
	"campusattend/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.EnsureSchema(db.Client); err != nil {
		return err
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "campus:sessions")
	}

	people := roster.NewRepository(db.Client)
	attRepo := attendance.NewRepository(db.Client)
	ledger := attendance.NewService(attRepo, people)
	resolver := attendance.NewResolver(attRepo, people, ledger)
	notifRepo := notify.NewRepository(db.Client)
	dispatcher := notify.NewDispatcher(notifRepo, people, attRepo,
		notify.SimulatedEmail{}, notify.SimulatedSMS{}, notify.SimulatedPush{})

	oracle := faceclient.Select(cfg.FaceServiceURL, cfg.FaceSimulate)
	if cfg.FaceSimulate {
		log.Println("face oracle: simulation")
	} else {
		log.Println("face oracle:", cfg.FaceServiceURL)
	}

	// Cloudinary photo storage (nil when not configured)
	var cdnClient *cloudinary.Client
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		cdnClient = cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		log.Println("Cloudinary configured:", cfg.CloudinaryCloudName)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	// Token issue. Credential verification belongs to the external auth
	// collaborator; this resolves the account role exactly once and bakes
	// it into the token.
	r.POST("/v1/auth/token", func(c *gin.Context) {
		var req struct {
			UserID string `json:"user_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		role := auth.RoleUnknown
		if _, err := people.Faculty(c.Request.Context(), req.UserID); err == nil {
			role = auth.RoleFaculty
		} else if _, err := people.Student(c.Request.Context(), req.UserID); err == nil {
			role = auth.RoleStudent
		}
		if role == auth.RoleUnknown {
			c.JSON(http.StatusNotFound, gin.H{"error": "no faculty or student account for this id"})
			return
		}

		tokens, err := auth.Issue(req.UserID, role, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"access_token":  tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"expires_at":    tokens.AccessExp.Unix(),
			"role":          role,
		})
	})

	// Open bootstrap endpoint, mirrored by admin tooling in deployment.
	r.POST("/v1/faculty", func(c *gin.Context) {
		var f roster.Faculty
		if err := c.ShouldBindJSON(&f); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if f.EmployeeID == "" || f.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "employee_id and name required"})
			return
		}
		if err := people.CreateFaculty(c.Request.Context(), &f); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, f)
	})

	authed := r.Group("/v1", auth.Bearer(cfg.JWTSigningKey, cfg.JWTIssuer))
	facultyOnly := authed.Group("", auth.RequireRole(auth.RoleFaculty))

	facultyOnly.POST("/students", func(c *gin.Context) {
		var s roster.Student
		if err := c.ShouldBindJSON(&s); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if s.StudentID == "" || s.FirstName == "" || s.Email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "student_id, first_name and email required"})
			return
		}
		if err := people.CreateStudent(c.Request.Context(), &s); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, s)
	})

	facultyOnly.DELETE("/students/:id", func(c *gin.Context) {
		if err := people.DeactivateStudent(c.Request.Context(), c.Param("id")); err != nil {
			statusFromErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deactivated": true})
	})

	facultyOnly.POST("/parents", func(c *gin.Context) {
		var p roster.Parent
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := people.CreateParent(c.Request.Context(), &p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, p)
	})

	facultyOnly.POST("/courses", func(c *gin.Context) {
		var course roster.Course
		if err := c.ShouldBindJSON(&course); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if course.FacultyID == nil {
			claims := auth.FromContext(c)
			course.FacultyID = &claims.Subject
		}
		if err := people.CreateCourse(c.Request.Context(), &course); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, course)
	})

	facultyOnly.PUT("/courses/:id/students", func(c *gin.Context) {
		var req struct {
			StudentIDs []string `json:"student_ids"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := people.ReplaceEnrollment(c.Request.Context(), c.Param("id"), req.StudentIDs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"enrolled": len(req.StudentIDs)})
	})

	facultyOnly.POST("/sessions", func(c *gin.Context) {
		var req struct {
			CourseID    string `json:"course_id" binding:"required"`
			Date        string `json:"date"`
			StartTime   string `json:"start_time" binding:"required"`
			EndTime     string `json:"end_time"`
			SessionType string `json:"session_type"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		claims := auth.FromContext(c)
		s := attendance.Session{
			CourseID:    req.CourseID,
			FacultyID:   &claims.Subject,
			StartTime:   req.StartTime,
			SessionType: attendance.SessionType(req.SessionType),
		}
		if req.Date != "" {
			d, err := time.Parse("2006-01-02", req.Date)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
				return
			}
			s.Date = d
		}
		if req.EndTime != "" {
			s.EndTime = &req.EndTime
		}
		if err := attRepo.CreateSession(c.Request.Context(), &s); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, s)
	})

	// Closing a session is asynchronous: the worker tops up absences,
	// fans out alerts and then deactivates it.
	facultyOnly.POST("/sessions/:id/close", func(c *gin.Context) {
		sessionID := c.Param("id")
		if _, err := attRepo.Session(c.Request.Context(), sessionID); err != nil {
			statusFromErr(c, err)
			return
		}
		if err := q.Publish(c.Request.Context(), queue.Message{Type: queue.TypeSessionClosed, Body: []byte(sessionID)}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "queue publish failed"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"session_id": sessionID, "closing": true})
	})

	facultyOnly.POST("/attendance/mark", func(c *gin.Context) {
		var req struct {
			SessionID      string   `json:"session_id" binding:"required"`
			StudentID      string   `json:"student_id" binding:"required"`
			Status         string   `json:"status" binding:"required"`
			Method         string   `json:"verification_method"`
			FaceConfidence *float64 `json:"face_confidence"`
			LocationLat    *float64 `json:"location_lat"`
			LocationLng    *float64 `json:"location_lng"`
			Notes          string   `json:"notes"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		session, err := attRepo.Session(c.Request.Context(), req.SessionID)
		if err != nil {
			statusFromErr(c, err)
			return
		}
		method := attendance.Method(req.Method)
		if method == "" {
			method = attendance.MethodManual
		}
		claims := auth.FromContext(c)
		res, err := ledger.Mark(c.Request.Context(), session, req.StudentID,
			attendance.Status(req.Status), method, &claims.Subject, attendance.Extra{
				FaceConfidence: req.FaceConfidence,
				LocationLat:    req.LocationLat,
				LocationLng:    req.LocationLng,
				Notes:          req.Notes,
			})
		if err != nil {
			statusFromErr(c, err)
			return
		}

		// Mark first, notify after; a failed alert never fails the mark.
		var alertCreated bool
		if res.Record.Status == attendance.StatusAbsent {
			out, nerr := dispatcher.OnMark(c.Request.Context(), session, res.Record)
			if nerr != nil {
				log.Printf("absence alert failed: %v", nerr)
			}
			alertCreated = out.Created
		}

		c.JSON(http.StatusOK, gin.H{
			"record":          res.Record,
			"created":         res.Created,
			"previous_status": res.Previous,
			"alert_created":   alertCreated,
		})
	})

	facultyOnly.POST("/attendance/bulk", func(c *gin.Context) {
		var req struct {
			SessionID string                `json:"session_id" binding:"required"`
			Records   []attendance.BulkItem `json:"records" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		session, err := attRepo.Session(c.Request.Context(), req.SessionID)
		if err != nil {
			statusFromErr(c, err)
			return
		}
		claims := auth.FromContext(c)
		results, failures := ledger.BulkMark(c.Request.Context(), session, req.Records, &claims.Subject)

		alerts, nerr := dispatcher.OnBulkMark(c.Request.Context(), session)
		if nerr != nil {
			log.Printf("bulk absence alerts failed: %v", nerr)
		}

		c.JSON(http.StatusOK, gin.H{
			"marked":  len(results),
			"results": results,
			"errors":  failures,
			"alerts":  alerts,
		})
	})

	facultyOnly.POST("/sessions/:id/auto-absent", func(c *gin.Context) {
		session, err := attRepo.Session(c.Request.Context(), c.Param("id"))
		if err != nil {
			statusFromErr(c, err)
			return
		}
		claims := auth.FromContext(c)
		count, err := resolver.AutoMarkAbsent(c.Request.Context(), session, &claims.Subject)
		if err != nil {
			statusFromErr(c, err)
			return
		}
		alerts, nerr := dispatcher.OnBulkMark(c.Request.Context(), session)
		if nerr != nil {
			log.Printf("auto-absent alerts failed: %v", nerr)
		}
		c.JSON(http.StatusOK, gin.H{"marked_absent": count, "alerts": alerts})
	})

	authed.GET("/sessions/:id/stats", func(c *gin.Context) {
		session, err := attRepo.Session(c.Request.Context(), c.Param("id"))
		if err != nil {
			statusFromErr(c, err)
			return
		}
		recs, err := ledger.SessionRecords(c.Request.Context(), session.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		unmarked, err := resolver.Unmarked(c.Request.Context(), session)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"session":  session,
			"stats":    attendance.Summarize(recs),
			"unmarked": unmarked,
		})
	})

	authed.GET("/sessions/:id/records", func(c *gin.Context) {
		recs, err := ledger.SessionRecords(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"records": recs})
	})

	authed.GET("/students/:id/stats", func(c *gin.Context) {
		studentID := c.Param("id")
		claims := auth.FromContext(c)
		if claims.Role == auth.RoleStudent && claims.Subject != studentID {
			c.JSON(http.StatusForbidden, gin.H{"error": "students may only view their own stats"})
			return
		}

		recs, err := ledger.StudentRecords(c.Request.Context(), studentID, "")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		overall := attendance.Summarize(recs)

		courses, err := people.CoursesForStudent(c.Request.Context(), studentID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		type courseStats struct {
			CourseID   string           `json:"course_id"`
			CourseCode string           `json:"course_code"`
			CourseName string           `json:"course_name"`
			Stats      attendance.Stats `json:"stats"`
		}
		var perCourse []courseStats
		for _, course := range courses {
			crecs, err := ledger.StudentRecords(c.Request.Context(), studentID, course.ID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			perCourse = append(perCourse, courseStats{
				CourseID:   course.ID,
				CourseCode: course.Code,
				CourseName: course.Name,
				Stats:      attendance.Summarize(crecs),
			})
		}

		c.JSON(http.StatusOK, gin.H{"overall": overall, "courses": perCourse})
	})

	facultyOnly.GET("/attendance/low", func(c *gin.Context) {
		threshold := cfg.LowAttendanceThreshold
		if v := c.Query("threshold"); v != "" {
			if t, err := strconv.ParseFloat(v, 64); err == nil && t > 0 {
				threshold = t
			}
		}
		entries, err := resolver.LowAttendance(c.Request.Context(), c.Query("course_id"), threshold)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"threshold": threshold, "students": entries})
	})

	facultyOnly.POST("/face/identify", func(c *gin.Context) {
		var req struct {
			SessionID string `json:"session_id" binding:"required"`
			Image     string `json:"image" binding:"required"` // base64
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		image, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image must be base64"})
			return
		}
		session, err := attRepo.Session(c.Request.Context(), req.SessionID)
		if err != nil {
			statusFromErr(c, err)
			return
		}

		students, err := people.EnrolledStudents(c.Request.Context(), session.CourseID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		recs, err := ledger.SessionRecords(c.Request.Context(), session.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		already := make(map[string]bool, len(recs))
		for _, rec := range recs {
			if rec.Status == attendance.StatusPresent {
				already[rec.StudentID] = true
			}
		}
		var candidates []faceclient.Candidate
		for _, s := range students {
			if !already[s.ID] {
				candidates = append(candidates, faceclient.Candidate{StudentID: s.ID, Encoding: s.FaceEncoding})
			}
		}

		match, err := oracle.Identify(c.Request.Context(), image, candidates)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "face identification failed"})
			return
		}
		if match == nil {
			c.JSON(http.StatusOK, gin.H{"recognized": false, "message": "all students already marked or no match found"})
			return
		}

		claims := auth.FromContext(c)
		res, err := ledger.Mark(c.Request.Context(), session, match.StudentID,
			attendance.StatusPresent, attendance.MethodFace, &claims.Subject,
			attendance.Extra{FaceConfidence: &match.Confidence})
		if err != nil {
			statusFromErr(c, err)
			return
		}
		if _, nerr := dispatcher.Confirm(c.Request.Context(), session, res.Record); nerr != nil {
			log.Printf("mark confirmation failed: %v", nerr)
		}

		c.JSON(http.StatusOK, gin.H{
			"recognized": true,
			"student_id": match.StudentID,
			"confidence": match.Confidence,
			"record":     res.Record,
		})
	})

	facultyOnly.POST("/students/:id/face", func(c *gin.Context) {
		var req struct {
			Image string `json:"image" binding:"required"` // base64
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		image, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image must be base64"})
			return
		}
		encoding, err := oracle.Encode(c.Request.Context(), image)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "face encoding failed"})
			return
		}
		if encoding == nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no face found in image"})
			return
		}
		studentID := c.Param("id")
		if err := people.SetFaceEncoding(c.Request.Context(), studentID, encoding); err != nil {
			statusFromErr(c, err)
			return
		}

		resp := gin.H{"enrolled": true}
		if cdnClient != nil {
			if up, uerr := cdnClient.UploadPhoto(image, studentID+".jpg"); uerr != nil {
				log.Printf("photo upload failed: %v", uerr)
			} else {
				resp["photo_url"] = up.SecureURL
			}
		}
		c.JSON(http.StatusOK, resp)
	})

	authed.GET("/notifications", func(c *gin.Context) {
		claims := auth.FromContext(c)
		studentID := c.Query("student_id")
		if claims.Role == auth.RoleStudent {
			studentID = claims.Subject
		}
		if studentID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "student_id required"})
			return
		}
		items, err := notifRepo.ListByStudent(c.Request.Context(), studentID, c.Query("unread") == "1", 50)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"notifications": items})
	})

	authed.POST("/notifications/:id/read", func(c *gin.Context) {
		if err := notifRepo.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"read": true})
	})

	authed.POST("/notifications/read-all", func(c *gin.Context) {
		claims := auth.FromContext(c)
		if claims.Role != auth.RoleStudent {
			c.JSON(http.StatusForbidden, gin.H{"error": "student token required"})
			return
		}
		if err := notifRepo.MarkAllRead(c.Request.Context(), claims.Subject); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"read": true})
	})

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// statusFromErr maps the core's typed failures to HTTP codes.
func statusFromErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, attendance.ErrSessionNotActive):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, attendance.ErrStudentNotEnrolled):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, attendance.ErrNotFound), errors.Is(err, roster.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
