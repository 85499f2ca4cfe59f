package repository

import (
	"io"
	"net/http"

	"github.com/user/cinebook/internal/model"
)

type MovieRepository struct {
	backend *Backend
}

func NewMovieRepository(backend *Backend) *MovieRepository {
	return &MovieRepository{backend: backend}
}

// List 获取全部电影
func (r *MovieRepository) List(cookies []*http.Cookie) ([]model.Movie, error) {
	var movies []model.Movie
	if err := r.backend.GetJSON("/movies/", nil, &movies, cookies); err != nil {
		return nil, err
	}
	return movies, nil
}

// Get 获取电影详情（含嵌套场次与评分聚合）
func (r *MovieRepository) Get(id string, cookies []*http.Cookie) (*model.Movie, error) {
	var movie model.Movie
	if err := r.backend.GetJSON("/movies/"+id+"/", nil, &movie, cookies); err != nil {
		return nil, err
	}
	return &movie, nil
}

// MovieForm 电影创建/更新的表单数据，海报为可选文件
type MovieForm struct {
	Title       string
	Genre       string
	Director    string
	Duration    string
	Description string
	Cast        string
	PosterName  string
	Poster      io.Reader
}

func (f *MovieForm) fields() []FormField {
	return []FormField{
		{Name: "title", Value: f.Title},
		{Name: "genre", Value: f.Genre},
		{Name: "director", Value: f.Director},
		{Name: "duration", Value: f.Duration},
		{Name: "description", Value: f.Description},
		{Name: "cast", Value: f.Cast},
	}
}

func (f *MovieForm) file() *FormFile {
	if f.Poster == nil {
		return nil
	}
	return &FormFile{Name: "poster_image", Filename: f.PosterName, Reader: f.Poster}
}

// Create 创建电影，multipart 表单携带海报
func (r *MovieRepository) Create(form MovieForm, cookies []*http.Cookie) (*model.Movie, error) {
	var movie model.Movie
	if err := r.backend.PostMultipart(http.MethodPost, "/movies/create/", form.fields(), form.file(), &movie, cookies); err != nil {
		return nil, err
	}
	return &movie, nil
}

// Update 更新电影
func (r *MovieRepository) Update(id string, form MovieForm, cookies []*http.Cookie) (*model.Movie, error) {
	var movie model.Movie
	if err := r.backend.PostMultipart(http.MethodPut, "/movies/"+id+"/update/", form.fields(), form.file(), &movie, cookies); err != nil {
		return nil, err
	}
	return &movie, nil
}

// Delete 删除电影
func (r *MovieRepository) Delete(id string, cookies []*http.Cookie) error {
	return r.backend.DeleteJSON("/movies/"+id+"/delete/", nil, nil, cookies)
}
