package models

import (
	"time"
)

// Request status constants
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
)

// Role constants carried in session tokens.
const (
	RoleAdmin      = "admin"
	RoleCounsellor = "counsellor"
	RoleStudent    = "student"
)

type Admin struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username   string `gorm:"not null"                 json:"username"`
	AccessCode string `gorm:"unique;not null"          json:"-"`
}

type Counselor struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string    `gorm:"not null"                 json:"name"`
	Email           string    `gorm:"not null"                 json:"email"`
	Specialty       string    `json:"specialty"`
	ExperienceYears int       `json:"experience_years"`
	WorkDays        string    `json:"work_days"`
	WorkHours       string    `json:"work_hours"`
	AssignedSchool  string    `json:"assigned_school"`
	AccessCode      string    `gorm:"unique;not null"          json:"access_code"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type AccessRequest struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SchoolName    string    `gorm:"not null"                 json:"school_name"`
	SchoolEmail   string    `gorm:"not null"                 json:"school_email"`
	ContactPerson string    `json:"contact_person"`
	PhoneNumber   string    `json:"phone_number"`
	Status        string    `gorm:"not null;default:pending" json:"status"`
	AccessCode    string    `json:"access_code"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (r *AccessRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}

func (r *AccessRequest) IsApproved() bool {
	return r.Status == RequestStatusApproved
}

// TriageRecord is append-only: rows are inserted once per assessment and
// never updated or deleted here.
type TriageRecord struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID          string    `gorm:"index"                    json:"student_id"`
	ScoreDepression    int       `gorm:"not null"                 json:"score_depression"`
	RiskLevel          string    `gorm:"not null"                 json:"risk_level"`
	FlaggedForSelfHarm bool      `json:"flagged_for_self_harm"`
	CreatedAt          time.Time `json:"created_at"`
}

// ChatSession keys a relay room by a generated id. The student's display
// name is an attribute, never a key, so colliding names cannot share a room.
type ChatSession struct {
	ID          string     `gorm:"primaryKey;size:36"  json:"id"`
	StudentName string     `json:"student_name"`
	CounselorID *uint      `gorm:"index"               json:"counselor_id"`
	Topic       string     `json:"topic"`
	Status      string     `gorm:"default:active"      json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	Counselor   *Counselor `gorm:"foreignKey:CounselorID" json:"counselor,omitempty"`
}

type ChatMessage struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID  string    `gorm:"index;size:36"            json:"session_id"`
	SenderID   string    `json:"sender_id"`
	SenderRole string    `gorm:"not null"                 json:"sender_role"`
	Content    string    `gorm:"not null"                 json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type Notification struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Type          string    `gorm:"not null"                 json:"type"`
	RecipientRole string    `json:"recipient_role"`
	Payload       string    `json:"payload"`
	CreatedAt     time.Time `json:"created_at"`
}
