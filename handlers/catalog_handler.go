package handlers

import (
	"net/http"

	"github.com/Madiyar04/fantasy-league/middleware"
	"github.com/Madiyar04/fantasy-league/services"
)

// CatalogHandler обслуживает справочники пилотов и конструкторов.
// Чтение публично, запись требует роль администратора (проверяется и
// в маршрутах, и в сервисе).
type CatalogHandler struct {
	catalogService services.CatalogService
}

func NewCatalogHandler(catalogService services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("active") == "true"

	drivers, err := h.catalogService.ListDrivers(r.Context(), onlyActive)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"drivers": drivers}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CatalogHandler) GetDriver(w http.ResponseWriter, r *http.Request) {
	driverID, err := getIDFromURL(r, "driverID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	driver, err := h.catalogService.GetDriver(r.Context(), driverID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"driver": driver}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CatalogHandler) CreateDriver(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "invalid authentication token")
		return
	}

	var input services.DriverInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	driver, err := h.catalogService.CreateDriver(r.Context(), input, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"driver": driver}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CatalogHandler) UpdateDriver(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "invalid authentication token")
		return
	}

	driverID, err := getIDFromURL(r, "driverID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.DriverInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	driver, err := h.catalogService.UpdateDriver(r.Context(), driverID, input, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"driver": driver}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CatalogHandler) UploadDriverPhoto(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "invalid authentication token")
		return
	}

	driverID, err := getIDFromURL(r, "driverID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	file, header, err := parseUploadedFile(w, r, "photo")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	driver, err := h.catalogService.UploadDriverPhoto(r.Context(), driverID, currentUserID, header.Header.Get("Content-Type"), file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"driver": driver}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CatalogHandler) ListConstructors(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("active") == "true"

	constructors, err := h.catalogService.ListConstructors(r.Context(), onlyActive)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"constructors": constructors}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CatalogHandler) GetConstructor(w http.ResponseWriter, r *http.Request) {
	constructorID, err := getIDFromURL(r, "constructorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	constructor, err := h.catalogService.GetConstructor(r.Context(), constructorID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"constructor": constructor}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CatalogHandler) CreateConstructor(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "invalid authentication token")
		return
	}

	var input services.ConstructorInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	constructor, err := h.catalogService.CreateConstructor(r.Context(), input, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"constructor": constructor}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CatalogHandler) UpdateConstructor(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "invalid authentication token")
		return
	}

	constructorID, err := getIDFromURL(r, "constructorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ConstructorInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	constructor, err := h.catalogService.UpdateConstructor(r.Context(), constructorID, input, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"constructor": constructor}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CatalogHandler) UploadConstructorLogo(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "invalid authentication token")
		return
	}

	constructorID, err := getIDFromURL(r, "constructorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	file, header, err := parseUploadedFile(w, r, "logo")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	constructor, err := h.catalogService.UploadConstructorLogo(r.Context(), constructorID, currentUserID, header.Header.Get("Content-Type"), file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"constructor": constructor}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
