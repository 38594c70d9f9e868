package main

import (
	"context"
	"fmt"
	"time"

	"github.com/saralgov/licence-backend/internal/config"
	"github.com/saralgov/licence-backend/internal/database"
	"github.com/saralgov/licence-backend/internal/logger"
	"github.com/saralgov/licence-backend/internal/model"
	"github.com/saralgov/licence-backend/internal/repository"
)

// seedQuestion is a compact literal form for the sample bank below.
type seedQuestion struct {
	language string
	text     string
	options  [4]string
	correct  int
	category string
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	questionRepo := repository.NewQuestionRepository(pool)

	fmt.Println("=== Seeding Sample Question Bank ===")

	seeded := 0
	for _, s := range sampleQuestions() {
		q := &model.Question{
			Language:     s.language,
			Text:         s.text,
			CorrectIndex: s.correct,
			Category:     s.category,
		}
		for _, opt := range s.options {
			q.Options = append(q.Options, model.Option{Text: opt})
		}
		if err := questionRepo.Create(ctx, q); err != nil {
			log.Fatal().Err(err).Str("text", s.text).Msg("Failed to seed question")
		}
		seeded++
	}

	fmt.Printf("Seeded %d questions.\n", seeded)
}

func sampleQuestions() []seedQuestion {
	return []seedQuestion{
		{
			language: model.LanguageEnglish,
			text:     "What does a red traffic light mean?",
			options:  [4]string{"Slow down", "Stop completely", "Proceed with caution", "Stop only if traffic is coming"},
			correct:  1,
			category: "signals",
		},
		{
			language: model.LanguageEnglish,
			text:     "When approaching a zebra crossing with a pedestrian waiting, you must",
			options:  [4]string{"Sound the horn and continue", "Speed up to pass first", "Stop and give way", "Flash headlights and continue"},
			correct:  2,
			category: "right-of-way",
		},
		{
			language: model.LanguageEnglish,
			text:     "The maximum speed limit for light vehicles inside city limits is",
			options:  [4]string{"40 km/h", "50 km/h", "60 km/h", "80 km/h"},
			correct:  1,
			category: "speed",
		},
		{
			language: model.LanguageEnglish,
			text:     "A triangular road sign with a red border generally indicates",
			options:  [4]string{"A mandatory instruction", "A warning", "A prohibition", "A service area"},
			correct:  1,
			category: "signs",
		},
		{
			language: model.LanguageEnglish,
			text:     "Before overtaking another vehicle, you should first",
			options:  [4]string{"Sound the horn continuously", "Check mirrors and signal", "Move to the shoulder", "Turn on hazard lights"},
			correct:  1,
			category: "overtaking",
		},
		{
			language: model.LanguageEnglish,
			text:     "Driving under the influence of alcohol is",
			options:  [4]string{"Allowed below a small limit", "Allowed on short trips", "Prohibited entirely", "Allowed with a passenger"},
			correct:  2,
			category: "safety",
		},
		{
			language: model.LanguageNepali,
			text:     "रातो ट्राफिक बत्तीको अर्थ के हो?",
			options:  [4]string{"गति घटाउनुहोस्", "पूर्ण रूपमा रोक्नुहोस्", "सावधानीपूर्वक अगाडि बढ्नुहोस्", "ट्राफिक आएमा मात्र रोक्नुहोस्"},
			correct:  1,
			category: "signals",
		},
		{
			language: model.LanguageNepali,
			text:     "जेब्रा क्रसिङमा पैदलयात्री पर्खिरहेको देखेमा के गर्नुपर्छ?",
			options:  [4]string{"हर्न बजाएर अगाडि बढ्ने", "गति बढाएर पहिले जाने", "रोकेर बाटो दिने", "हेडलाइट बालेर अगाडि बढ्ने"},
			correct:  2,
			category: "right-of-way",
		},
		{
			language: model.LanguageNepali,
			text:     "सहर भित्र हलुका सवारीको अधिकतम गति सीमा कति हो?",
			options:  [4]string{"४० किमी/घण्टा", "५० किमी/घण्टा", "६० किमी/घण्टा", "८० किमी/घण्टा"},
			correct:  1,
			category: "speed",
		},
		{
			language: model.LanguageNepali,
			text:     "मादक पदार्थ सेवन गरेर सवारी चलाउनु",
			options:  [4]string{"थोरै मात्रामा मिल्छ", "छोटो यात्रामा मिल्छ", "पूर्ण रूपमा निषेध छ", "सहयात्री भएमा मिल्छ"},
			correct:  2,
			category: "safety",
		},
	}
}
