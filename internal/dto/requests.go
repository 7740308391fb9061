package dto

// RegisterRequest запрос на регистрацию студента.
type RegisterRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Name     string  `json:"name"`
	Password string  `json:"password"`
	CampusID *string `json:"campus_id"`
}

// LoginRequest вход по email. Пароль нужен, только если он уже задан.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// RefreshRequest обмен refresh токена на новую пару.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateRoleRequest смена роли пользователя администратором.
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,role"`
}

// CreateLocationRequest новая точка на кампусе.
type CreateLocationRequest struct {
	Name     string  `json:"name" binding:"required"`
	Building string  `json:"building" binding:"required"`
	Floor    *string `json:"floor"`
}

// FoundItemForm поля multipart формы о найденной вещи. Фото передаются в поле photos.
type FoundItemForm struct {
	Title         string `form:"title" binding:"required"`
	Description   string `form:"description" binding:"required"`
	Category      string `form:"category" binding:"required"`
	LocationID    int    `form:"location_id" binding:"required,gt=0"`
	ReporterName  string `form:"reporter_name" binding:"required"`
	ReporterEmail string `form:"reporter_email" binding:"required"`
	FoundDate     string `form:"found_date" binding:"required"`
	FoundTime     string `form:"found_time"`
}

// FoundItemQuery фильтры списка найденных вещей.
type FoundItemQuery struct {
	Status     string `form:"status" binding:"omitempty,itemstatus"`
	Category   string `form:"category"`
	LocationID int    `form:"location_id" binding:"omitempty,gt=0"`
	Skip       int    `form:"skip" binding:"omitempty,gte=0"`
	Limit      int    `form:"limit" binding:"omitempty,gte=1,lte=500"`
}

// UpdateItemStatusRequest ручная смена статуса найденной вещи.
type UpdateItemStatusRequest struct {
	Status string `json:"status" binding:"required,itemstatus"`
}

// CreateLostItemRequest заявление о потере.
type CreateLostItemRequest struct {
	Title              string  `json:"title" binding:"required"`
	Description        string  `json:"description" binding:"required"`
	LastSeenLocationID int     `json:"last_seen_location_id" binding:"required,gt=0"`
	LastSeenAt         string  `json:"last_seen_at" binding:"required"`
	ReporterName       string  `json:"reporter_name" binding:"required"`
	ReporterEmail      string  `json:"reporter_email" binding:"required"`
	PhotoURL           *string `json:"photo_url"`
}

// CreateClaimRequest заявка на получение найденной вещи.
type CreateClaimRequest struct {
	FoundID       string  `json:"found_id" binding:"required,uuid"`
	ClaimantName  string  `json:"claimant_name" binding:"required"`
	ClaimantEmail string  `json:"claimant_email" binding:"required"`
	Notes         *string `json:"notes"`
}

// ClaimQuery фильтры списка заявок.
type ClaimQuery struct {
	Status string `form:"status" binding:"omitempty,claimstatus"`
	Skip   int    `form:"skip" binding:"omitempty,gte=0"`
	Limit  int    `form:"limit" binding:"omitempty,gte=1,lte=500"`
}

// VerifyClaimRequest решение сотрудника по заявке.
type VerifyClaimRequest struct {
	Verified *bool   `json:"verified" binding:"required"`
	Notes    *string `json:"notes"`
}

// PickupRequest выдача вещи по коду.
type PickupRequest struct {
	HoldCode string `json:"hold_code" binding:"required"`
}
