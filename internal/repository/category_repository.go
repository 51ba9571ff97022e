package repository

import (
	"database/sql"

	"github.com/ajitgoel/reddit-analytics/internal/model"
)

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) GetAll() ([]model.Category, error) {
	rows, err := r.db.Query(`
		SELECT id, name, description
		FROM categories
		ORDER BY name
	`)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		err := rows.Scan(&c.ID, &c.Name, &c.Description)
		if err != nil {
			return nil, err
		}

		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *CategoryRepository) GetByID(id int64) (*model.Category, error) {
	var c model.Category
	err := r.db.QueryRow(`
		SELECT id, name, description
		FROM categories
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Description)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &c, nil
}

func (r *CategoryRepository) Insert(name string, description string) (*model.Category, error) {
	c := model.Category{Name: name, Description: description}
	err := r.db.QueryRow(`
		INSERT INTO categories(name, description)
		VALUES($1, $2)
		RETURNING id
	`, name, description).Scan(&c.ID)

	if err != nil {
		return nil, err
	}

	return &c, nil
}
