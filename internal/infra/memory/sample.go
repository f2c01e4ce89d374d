package memory

import "learnhub-quiz-service/internal/domain"

// SampleCatalog provides demo content; swap the loader for the Postgres store in production.
func SampleCatalog() Catalog {
	return Catalog{
		Subjects: []domain.Subject{
			{ID: "1", Title: "Mathematics", Description: "Learn mathematics from the basics to advanced topics", Icon: "📐", Color: "#4CAF50", Level: "beginner", TotalMaterials: 15, TotalQuizzes: 8},
			{ID: "2", Title: "Indonesian Language", Description: "Master Indonesian grammar and literature", Icon: "📚", Color: "#2196F3", Level: "intermediate", TotalMaterials: 12, TotalQuizzes: 6},
			{ID: "3", Title: "English", Description: "Improve your English skills", Icon: "🗣️", Color: "#FF9800", Level: "intermediate", TotalMaterials: 20, TotalQuizzes: 10},
			{ID: "4", Title: "Science", Description: "Explore science and natural phenomena", Icon: "🔬", Color: "#9C27B0", Level: "intermediate", TotalMaterials: 18, TotalQuizzes: 9},
			{ID: "5", Title: "History", Description: "Study historical events of Indonesia and the world", Icon: "🏛️", Color: "#795548", Level: "beginner", TotalMaterials: 14, TotalQuizzes: 7},
			{ID: "6", Title: "Geography", Description: "Get to know the earth and geographic phenomena", Icon: "🌍", Color: "#607D8B", Level: "beginner", TotalMaterials: 16, TotalQuizzes: 8},
		},
		Materials: []domain.Material{
			{ID: "2", SubjectID: "1", Title: "Addition and Subtraction", Description: "Learn how to add and subtract", Type: "video", DurationMinutes: 45, Difficulty: "easy", Content: "Video lesson on basic arithmetic operations", VideoURL: "https://example.com/video1", Order: 2},
			{ID: "1", SubjectID: "1", Title: "Introduction to Numbers", Description: "Understand the basic concept of numbers and operations", Type: "article", DurationMinutes: 30, Difficulty: "easy", Content: "Numbers are the basic concept in mathematics used to count, measure and label...", ImageURL: "https://via.placeholder.com/300x200", Order: 1},
			{ID: "3", SubjectID: "2", Title: "Indonesian Grammar", Description: "Understand sentence structure in Indonesian", Type: "article", DurationMinutes: 40, Difficulty: "medium", Content: "Indonesian grammar covers the rules for forming words and sentences...", ImageURL: "https://via.placeholder.com/300x200", Order: 1},
		},
		Books: []domain.Book{
			{
				ID: "1", SubjectID: "1", Title: "Basic Mathematics for Beginners", Author: "Dr. Ahmad Susanto",
				Description: "A complete guide to basic mathematics with easy explanations",
				CoverURL:    "https://via.placeholder.com/200x300", Pages: 250, Rating: 4.5, DownloadCount: 1250,
				Chapters: []domain.BookChapter{
					{ID: "1", Title: "Introduction to Numbers", PageStart: 1, PageEnd: 25, Summary: "Basic concept of numbers and their kinds"},
					{ID: "2", Title: "Basic Operations", PageStart: 26, PageEnd: 60, Summary: "Addition, subtraction, multiplication and division"},
				},
			},
			{
				ID: "2", SubjectID: "2", Title: "Complete Guide to Indonesian", Author: "Prof. Siti Nurhaliza",
				Description: "A comprehensive book on Indonesian grammar and literature",
				CoverURL:    "https://via.placeholder.com/200x300", Pages: 320, Rating: 4.7, DownloadCount: 890,
				Chapters: []domain.BookChapter{
					{ID: "1", Title: "Grammar", PageStart: 1, PageEnd: 80, Summary: "Rules and structure of Indonesian"},
				},
			},
		},
		Quizzes: []domain.Quiz{
			{
				ID: "1", SubjectID: "1", MaterialID: "1", Title: "Numbers Quiz",
				Description:      "Test your understanding of numbers",
				TimeLimitMinutes: 15, PassingScore: 70, Difficulty: "easy", MaxAttempts: 3,
				Questions: []domain.Question{
					{ID: "1", Text: "What is 5 + 3?", Kind: domain.KindMultipleChoice, Options: []string{"6", "7", "8", "9"}, CorrectAnswer: domain.IndexAnswer(2), Explanation: "5 + 3 = 8", Points: 10},
					{ID: "2", Text: "A prime number is only divisible by 1 and itself.", Kind: domain.KindTrueFalse, CorrectAnswer: domain.IndexAnswer(0), Explanation: "True. A prime has exactly two factors: 1 and itself.", Points: 10},
				},
			},
			{
				ID: "2", SubjectID: "2", Title: "Indonesian Grammar Quiz",
				Description:      "Test your Indonesian grammar",
				TimeLimitMinutes: 20, PassingScore: 75, Difficulty: "medium", MaxAttempts: 3,
				Questions: []domain.Question{
					{ID: "1", Text: "What is the subject of a sentence?", Kind: domain.KindMultipleChoice, Options: []string{"The actor of the sentence", "The action of the sentence", "The object of the sentence", "The adverb of the sentence"}, CorrectAnswer: domain.IndexAnswer(0), Explanation: "The subject is the one performing the action", Points: 15},
				},
			},
		},
	}
}
