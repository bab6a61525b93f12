package book

type UpsertBookReq struct {
	Title     string `json:"title" validate:"required"`
	Author    string `json:"author" validate:"required"`
	Category  string `json:"category"`
	Publisher string `json:"publisher"`
	ISBN      string `json:"isbn" validate:"required"`
	Stock     int64  `json:"stock" validate:"gte=0"`
}
