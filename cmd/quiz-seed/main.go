// quiz-seed loads categories and questions from a JSON file into the sqlite
// store. It is the admin/seed tooling the delivery service reads from; the
// service itself never writes content.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"quiz-service/internal/quiz"
	"quiz-service/internal/quiz/sqlite"
)

type seedAnswer struct {
	Text        string `json:"text"`
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation,omitempty"`
}

type seedQuestion struct {
	Text       string       `json:"text"`
	Difficulty string       `json:"difficulty"`
	Points     int          `json:"points"`
	Answers    []seedAnswer `json:"answers"`
}

type seedCategory struct {
	Name      string         `json:"name"`
	Slug      string         `json:"slug"`
	SortOrder int            `json:"sort_order"`
	Questions []seedQuestion `json:"questions"`
}

type seedFile struct {
	Categories []seedCategory `json:"categories"`
}

func main() {
	dbPath := flag.String("db", "quiz.db", "sqlite database path")
	filePath := flag.String("file", "seed.json", "seed JSON file")
	flag.Parse()

	payload, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatalf("[FATAL] read seed file: %v", err)
	}

	var seed seedFile
	if err := json.Unmarshal(payload, &seed); err != nil {
		log.Fatalf("[FATAL] parse seed file: %v", err)
	}

	store, err := sqlite.NewStore(*dbPath)
	if err != nil {
		log.Fatalf("[FATAL] open database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	categoryCount, questionCount := 0, 0

	for _, category := range seed.Categories {
		categoryID, err := store.CreateCategory(ctx, quiz.Category{
			Name:      category.Name,
			Slug:      category.Slug,
			SortOrder: category.SortOrder,
			IsActive:  true,
		})
		if err != nil {
			log.Fatalf("[FATAL] create category %q: %v", category.Slug, err)
		}
		categoryCount++

		for _, question := range category.Questions {
			difficulty, ok := quiz.ParseDifficulty(question.Difficulty)
			if !ok || difficulty == quiz.DifficultyAny {
				log.Fatalf("[FATAL] question %q in %q: invalid difficulty %q", question.Text, category.Slug, question.Difficulty)
			}

			answers := make([]quiz.Answer, 0, len(question.Answers))
			correct := 0
			for i, answer := range question.Answers {
				if answer.Correct {
					correct++
				}
				answers = append(answers, quiz.Answer{
					Text:        answer.Text,
					IsCorrect:   answer.Correct,
					SortOrder:   i,
					Explanation: answer.Explanation,
				})
			}
			if correct != 1 {
				log.Fatalf("[FATAL] question %q in %q: want exactly one correct answer, got %d", question.Text, category.Slug, correct)
			}

			points := question.Points
			if points <= 0 {
				points = 10
			}

			if _, err := store.CreateQuestion(ctx, quiz.Question{
				CategoryID: categoryID,
				Text:       question.Text,
				Difficulty: difficulty,
				Points:     points,
				IsActive:   true,
				Answers:    answers,
			}); err != nil {
				log.Fatalf("[FATAL] create question %q: %v", question.Text, err)
			}
			questionCount++
		}
	}

	log.Printf("[IMPORT] seeded %d categories, %d questions from %s", categoryCount, questionCount, *filePath)
}
