package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/kdimtricp/veriframe/internal/ai"
	"github.com/kdimtricp/veriframe/internal/api"
	"github.com/kdimtricp/veriframe/internal/database"
	"github.com/kdimtricp/veriframe/internal/detection"
	"github.com/kdimtricp/veriframe/internal/emitter"
	"github.com/kdimtricp/veriframe/internal/storage"
)

func main() {
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	maxUploadSize := os.Getenv("MAX_UPLOAD_SIZE")
	if maxUploadSize == "" {
		maxUploadSize = "104857600"
	}
	maxSize, err := strconv.ParseInt(maxUploadSize, 10, 64)
	if err != nil {
		log.Fatal("Invalid MAX_UPLOAD_SIZE:", err)
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "./uploads"
	}

	// Database configuration
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "sqlite"
	}

	var dbConfig database.Config
	dbConfig.Type = dbType

	if dbType == "postgres" {
		dbConfig.Host = os.Getenv("DB_HOST")
		if dbConfig.Host == "" {
			dbConfig.Host = "localhost"
		}

		dbPortStr := os.Getenv("DB_PORT")
		if dbPortStr == "" {
			dbPortStr = "5432"
		}
		dbPort, err := strconv.Atoi(dbPortStr)
		if err != nil {
			log.Fatal("Invalid DB_PORT:", err)
		}
		dbConfig.Port = dbPort

		dbConfig.User = os.Getenv("DB_USER")
		if dbConfig.User == "" {
			dbConfig.User = "veriframe"
		}

		dbConfig.Password = os.Getenv("DB_PASSWORD")
		if dbConfig.Password == "" {
			dbConfig.Password = "veriframe_dev"
		}

		dbConfig.Name = os.Getenv("DB_NAME")
		if dbConfig.Name == "" {
			dbConfig.Name = "veriframe"
		}
	} else {
		dbConfig.SQLitePath = os.Getenv("DB_PATH")
		if dbConfig.SQLitePath == "" {
			dbConfig.SQLitePath = "./veriframe.db"
		}
	}

	detectorCfg := detection.DefaultConfig()
	if cfgPath := os.Getenv("DETECTOR_CONFIG"); cfgPath != "" {
		detectorCfg, err = detection.Load(cfgPath)
		if err != nil {
			log.Fatal("Failed to load detector config:", err)
		}
		log.Printf("Loaded detector config from %s", cfgPath)
	}

	localStorage, err := storage.NewLocalStorage(uploadDir)
	if err != nil {
		log.Fatal("Failed to initialize storage:", err)
	}

	db, err := database.NewDB(dbConfig)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	videoRepo := database.NewVideoRepository(db)
	resultRepo := database.NewFrameResultRepo(db)

	inferenceURL := os.Getenv("INFERENCE_URL")
	if inferenceURL == "" {
		log.Fatal("INFERENCE_URL is required (visual classifier endpoint)")
	}
	classifier := ai.NewRemoteClassifier(inferenceURL)

	var locator ai.FaceLocator = ai.FullFrameLocator{}
	if locatorURL := os.Getenv("FACE_LOCATOR_URL"); locatorURL != "" {
		locator = ai.NewRemoteLocator(locatorURL)
		log.Printf("Face locator: %s", locatorURL)
	} else {
		log.Printf("FACE_LOCATOR_URL not set, treating full frames as faces")
	}

	detector := detection.NewDetector(detectorCfg, locator, classifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessionTTL := 10 * time.Minute
	if v := os.Getenv("SESSION_TTL_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			sessionTTL = time.Duration(minutes) * time.Minute
		}
	}
	detector.Sessions().StartReaper(ctx, sessionTTL, time.Minute)

	var verdictEmitter *emitter.Emitter
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		verdictEmitter, err = emitter.Connect(natsURL, os.Getenv("NATS_SUBJECT"))
		if err != nil {
			log.Printf("Warning: Failed to connect verdict emitter: %v", err)
		} else {
			defer verdictEmitter.Close()
			log.Printf("Publishing verdicts to NATS at %s", natsURL)
		}
	}

	var frameExtractor api.FrameExtractor
	if fe, err := ai.NewFrameExtractor(); err != nil {
		log.Printf("Warning: Failed to initialize frame extractor: %v", err)
	} else {
		frameExtractor = fe
	}

	framesPerVideo := 30
	if v := os.Getenv("FRAMES_PER_VIDEO"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			framesPerVideo = parsed
		}
	}

	frameSize := 512
	if v := os.Getenv("FRAME_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			frameSize = parsed
		}
	}

	app := &api.App{
		Detector:       detector,
		VideoRepo:      videoRepo,
		ResultRepo:     resultRepo,
		Storage:        localStorage,
		FrameExtractor: frameExtractor,
		Emitter:        verdictEmitter,
		MaxUploadSize:  maxSize,
		ModelName:      classifier.Name(),
		StartTime:      time.Now(),
		FramesPerVideo: framesPerVideo,
		FrameSize:      frameSize,
	}

	router := api.NewRouter(app)

	log.Printf("Server starting on port %s", port)
	log.Printf("Upload directory: %s", uploadDir)
	log.Printf("Database type: %s", dbType)
	if dbType == "postgres" {
		log.Printf("Database connection: %s@%s:%d/%s", dbConfig.User, dbConfig.Host, dbConfig.Port, dbConfig.Name)
	} else {
		log.Printf("Database path: %s", dbConfig.SQLitePath)
	}
	log.Printf("Inference endpoint: %s", inferenceURL)
	log.Printf("Session TTL: %s", sessionTTL)

	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatal(err)
	}
}
