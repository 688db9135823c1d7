package org

import "time"

type Division struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Department struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	DivisionID   string    `json:"divisionId"`
	DivisionName string    `json:"divisionName"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type DivisionInput struct {
	Name string `json:"name"`
}

type DepartmentInput struct {
	Name     string `json:"name"`
	Division string `json:"division"`
}
