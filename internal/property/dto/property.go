package dto

// PropertyRequest is the create/edit form
type PropertyRequest struct {
	Title       string `form:"title" binding:"required,max=100"`
	Description string `form:"description" binding:"required,max=200"`
	Category    uint   `form:"category" binding:"required"`
	Price       uint   `form:"price" binding:"required"`
	Bedrooms    int    `form:"bedrooms" binding:"required,min=1"`
	Parking     int    `form:"parking" binding:"required,min=1"`
	Bathrooms   int    `form:"bathrooms" binding:"required,min=1"`
	Street      string `form:"street" binding:"max=60"`
	Lat         string `form:"lat" binding:"required"`
	Lng         string `form:"lng"`
}

type MessageRequest struct {
	Body string `form:"body" binding:"required,min=10,max=200"`
}

// MapProperty is the public view served to the map
type MapProperty struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Image    string `json:"image"`
	Lat      string `json:"lat"`
	Lng      string `json:"lng"`
	Street   string `json:"street"`
	Category string `json:"category"`
	Price    string `json:"price"`
}

type ToggleResponse struct {
	Result    bool `json:"result"`
	Published bool `json:"published"`
}
