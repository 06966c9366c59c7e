package domain

import "time"

// MainCategory is a top-level category term.
type MainCategory struct {
	ID   int64
	Slug string
	Name string
}

// Category is a sub category belonging to exactly one main category.
type Category struct {
	ID       int64
	ParentID int64
	Slug     string
	Name     string
	Handling string
	IsActive bool

	Parent      *MainCategory
	Departments []CategoryDepartment
}

// CategoryDepartment links a category to a department. At most one
// link per category may carry IsResponsible; CanView is independent.
type CategoryDepartment struct {
	ID            int64
	CategoryID    int64
	DepartmentID  int64
	IsResponsible bool
	CanView       bool

	Category   *Category
	Department *Department
}

// CategoryAssignment records which sub category a signal was filed
// under. Re-assignment appends a new row; history is never rewritten.
type CategoryAssignment struct {
	ID         int64
	SignalID   int64
	CategoryID int64
	CreatedBy  string
	CreatedAt  time.Time

	Category *Category
}
