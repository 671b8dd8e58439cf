package model

import "time"

type QuestionType string

const (
	QuestionPrinciple   QuestionType = "principle"
	QuestionApplication QuestionType = "application"
	QuestionOpposite    QuestionType = "opposite"
)

// QuestionOrder is the fixed positional kind of each of the three questions.
var QuestionOrder = [3]QuestionType{QuestionPrinciple, QuestionApplication, QuestionOpposite}

type Audience string

const (
	AudienceTeacher Audience = "teacher"
	AudienceStudent Audience = "student"
	AudienceParent  Audience = "parent"
)

func (a Audience) Valid() bool {
	switch a {
	case AudienceTeacher, AudienceStudent, AudienceParent:
		return true
	}
	return false
}

type Question struct {
	Question  string       `bson:"question" json:"question"`
	Reasoning string       `bson:"reasoning" json:"reasoning"`
	Type      QuestionType `bson:"type" json:"type"`
}

// FeynmanContent is the validated generation payload.
type FeynmanContent struct {
	Title            string     `bson:"feynmanTitle" json:"feynmanTitle"`
	Summary          string     `bson:"feynmanSummary" json:"feynmanSummary"`
	Content          string     `bson:"feynmanContent" json:"feynmanContent"` // markdown
	Questions        []Question `bson:"questions" json:"questions"`
	Tags             []string   `bson:"tags" json:"tags"`
	TargetAudience   Audience   `bson:"targetAudience" json:"targetAudience"`
	DifficultyLevel  int        `bson:"difficultyLevel" json:"difficultyLevel"`
	EducationContext string     `bson:"educationContext" json:"educationContext"`
}

type ArticleStatus string

const (
	ArticleDraft     ArticleStatus = "draft"
	ArticlePublished ArticleStatus = "published"
)

type PlatformState struct {
	Published bool   `bson:"published" json:"published"`
	URL       string `bson:"url" json:"url"`
}

type Platforms struct {
	Blog    PlatformState  `bson:"blog" json:"blog"`
	Twitter *PlatformState `bson:"twitter,omitempty" json:"twitter,omitempty"`
	YouTube *PlatformState `bson:"youtube,omitempty" json:"youtube,omitempty"`
}

// FeynmanArticle is the derived long-form article for one RawNews.
// The generated prose is never rewritten after creation.
type FeynmanArticle struct {
	ID              string `bson:"_id" json:"id"`
	RawNewsID       string `bson:"rawNewsId" json:"rawNewsId"`
	FeynmanContent  `bson:",inline"`
	Slug            string        `bson:"slug" json:"slug"`
	MetaDescription string        `bson:"metaDescription" json:"metaDescription"`
	Language        string        `bson:"language" json:"language"`
	Provider        string        `bson:"provider" json:"provider"`
	CreatedAt       time.Time     `bson:"createdAt" json:"createdAt"`
	PublishedAt     *time.Time    `bson:"publishedAt" json:"publishedAt"`
	Status          ArticleStatus `bson:"status" json:"status"`
	Platforms       Platforms     `bson:"platforms" json:"platforms"`
}
