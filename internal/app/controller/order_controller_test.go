package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taragold/taraerp-backend/internal/app/codegen"
	"github.com/taragold/taraerp-backend/internal/app/model"
	"github.com/taragold/taraerp-backend/internal/app/repository"
	"github.com/taragold/taraerp-backend/internal/app/service"
	"github.com/taragold/taraerp-backend/internal/db"
	"gorm.io/gorm"
)

func setupOrderControllerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	orderRepo := repository.NewOrderRepository(testDB)
	partnerRepo := repository.NewPartnerRepository(testDB)

	orderService := service.NewOrderService(orderRepo, partnerRepo, codegen.NewKeyedMutex(), nil, testDB)
	reportService := service.NewReportService(orderRepo)

	ctrl := NewOrderController(orderService, reportService)

	router := gin.New()
	router.POST("/orders", ctrl.Place)
	router.GET("/orders", ctrl.List)
	router.GET("/orders/export", ctrl.Export)
	router.GET("/orders/:order_no", ctrl.Get)
	router.GET("/orders/:order_no/history", ctrl.History)
	router.POST("/orders/:order_no/review", ctrl.KeyUserReview)
	router.POST("/orders/:order_no/verify", ctrl.AdminVerify)
	router.POST("/orders/:order_no/assign", ctrl.Assign)
	router.POST("/orders/:order_no/response", ctrl.CraftsmanRespond)
	router.POST("/orders/:order_no/complete", ctrl.ClaimCompletion)
	router.POST("/orders/:order_no/approve", ctrl.FinalApprove)

	return router, testDB
}

func createControllerTestPartner(t *testing.T, testDB *gorm.DB, bpCode, name string, role model.PartnerRole) *model.BusinessPartner {
	mobile := "93000000" + bpCode[len(bpCode)-2:]
	if role == model.PartnerRoleCraftsman {
		mobile = "84000000" + bpCode[len(bpCode)-2:]
	}
	partner := &model.BusinessPartner{
		BPCode:       bpCode,
		BusinessName: name,
		Role:         role,
		Mobile:       mobile,
		Status:       model.PartnerStatusApproved,
	}
	require.NoError(t, testDB.Create(partner).Error)
	return partner
}

func placeOrderViaAPI(t *testing.T, router *gin.Engine, partnerRef string) string {
	t.Helper()

	due := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	w := postJSON(t, router, "/orders", PlaceOrderRequest{
		PartnerRef: partnerRef,
		ItemName:   "Temple pendant",
		MetalType:  "gold",
		Purity:     "22K",
		Quantity:   1,
		DueDate:    due,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	orderMap := response["order"].(map[string]interface{})
	return orderMap["order_no"].(string)
}

func TestOrderController_Place(t *testing.T) {
	router, testDB := setupOrderControllerTest(t)
	buyer := createControllerTestPartner(t, testDB, "BG001", "Golden House", model.PartnerRoleBuyer)

	t.Run("success", func(t *testing.T) {
		orderNo := placeOrderViaAPI(t, router, buyer.CodeName())
		assert.Equal(t, "001", orderNo)
	})

	t.Run("unknown partner", func(t *testing.T) {
		due := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
		w := postJSON(t, router, "/orders", PlaceOrderRequest{
			PartnerRef: "ZZ999-Nobody",
			ItemName:   "Ring",
			DueDate:    due,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad due date format", func(t *testing.T) {
		w := postJSON(t, router, "/orders", PlaceOrderRequest{
			PartnerRef: buyer.CodeName(),
			ItemName:   "Ring",
			DueDate:    "next tuesday",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "YYYY-MM-DD")
	})

	t.Run("due date today", func(t *testing.T) {
		w := postJSON(t, router, "/orders", PlaceOrderRequest{
			PartnerRef: buyer.CodeName(),
			ItemName:   "Ring",
			DueDate:    time.Now().Format("2006-01-02"),
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "tomorrow or later")
	})

	t.Run("missing item name", func(t *testing.T) {
		w := postJSON(t, router, "/orders", PlaceOrderRequest{
			PartnerRef: buyer.CodeName(),
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderController_GetAndList(t *testing.T) {
	router, testDB := setupOrderControllerTest(t)
	buyer := createControllerTestPartner(t, testDB, "BG001", "Golden House", model.PartnerRoleBuyer)
	orderNo := placeOrderViaAPI(t, router, buyer.CodeName())

	t.Run("get", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/orders/"+orderNo, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		orderMap := response["order"].(map[string]interface{})
		assert.Equal(t, orderNo, orderMap["order_no"])
		assert.Equal(t, string(model.OrderStatusPending), orderMap["status"])
	})

	t.Run("get unknown", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/orders/999", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("list by status", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/orders?status=pending", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, float64(1), response["count"])
	})

	t.Run("list other status is empty", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/orders?status=complete", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, float64(0), response["count"])
	})
}

func TestOrderController_Lifecycle(t *testing.T) {
	router, testDB := setupOrderControllerTest(t)
	buyer := createControllerTestPartner(t, testDB, "BG001", "Golden House", model.PartnerRoleBuyer)
	craftsman := createControllerTestPartner(t, testDB, "AG001", "Artisan Guild", model.PartnerRoleCraftsman)
	orderNo := placeOrderViaAPI(t, router, buyer.CodeName())

	// key user approves
	w := postJSON(t, router, "/orders/"+orderNo+"/review", ReviewRequest{Approve: true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// admin accepts with an estimate
	w = postJSON(t, router, "/orders/"+orderNo+"/verify", AdminVerifyRequest{
		Accept:        true,
		EstimatedDays: 10,
		Notes:         "standard casting queue",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// assignment to the craftsman
	w = postJSON(t, router, "/orders/"+orderNo+"/assign", AssignRequest{
		CraftsmanRef: craftsman.CodeName(),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// craftsman accepts
	w = postJSON(t, router, "/orders/"+orderNo+"/response", CraftsmanResponseRequest{Accept: true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// craftsman claims completion
	w = postJSON(t, router, "/orders/"+orderNo+"/complete", struct{}{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// final approval closes the order
	w = postJSON(t, router, "/orders/"+orderNo+"/approve", struct{}{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	orderMap := response["order"].(map[string]interface{})
	assert.Equal(t, string(model.OrderStatusComplete), orderMap["status"])
	assert.NotNil(t, orderMap["completed_at"])

	// the audit trail recorded every step
	req := httptest.NewRequest("GET", "/orders/"+orderNo+"/history", nil)
	hw := httptest.NewRecorder()
	router.ServeHTTP(hw, req)

	assert.Equal(t, http.StatusOK, hw.Code)

	var history map[string]interface{}
	require.NoError(t, json.Unmarshal(hw.Body.Bytes(), &history))
	assert.Equal(t, float64(7), history["count"])
}

func TestOrderController_InvalidTransition(t *testing.T) {
	router, testDB := setupOrderControllerTest(t)
	buyer := createControllerTestPartner(t, testDB, "BG001", "Golden House", model.PartnerRoleBuyer)
	orderNo := placeOrderViaAPI(t, router, buyer.CodeName())

	// admin verification requires an in-process order
	w := postJSON(t, router, "/orders/"+orderNo+"/verify", AdminVerifyRequest{Accept: true})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "ORDER_INVALID_STATE")
	assert.Contains(t, w.Body.String(), "expected in-process")
}

func TestOrderController_CraftsmanRejection(t *testing.T) {
	router, testDB := setupOrderControllerTest(t)
	buyer := createControllerTestPartner(t, testDB, "BG001", "Golden House", model.PartnerRoleBuyer)
	craftsman := createControllerTestPartner(t, testDB, "AG001", "Artisan Guild", model.PartnerRoleCraftsman)
	orderNo := placeOrderViaAPI(t, router, buyer.CodeName())

	w := postJSON(t, router, "/orders/"+orderNo+"/review", ReviewRequest{Approve: true})
	require.Equal(t, http.StatusOK, w.Code)
	w = postJSON(t, router, "/orders/"+orderNo+"/verify", AdminVerifyRequest{Accept: true, EstimatedDays: 5})
	require.Equal(t, http.StatusOK, w.Code)
	w = postJSON(t, router, "/orders/"+orderNo+"/assign", AssignRequest{CraftsmanRef: craftsman.CodeName()})
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("unknown reason", func(t *testing.T) {
		w := postJSON(t, router, "/orders/"+orderNo+"/response", CraftsmanResponseRequest{
			Accept: false,
			Reason: "bad-vibes",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "ORDER_INVALID_REASON")
	})

	t.Run("other requires notes", func(t *testing.T) {
		w := postJSON(t, router, "/orders/"+orderNo+"/response", CraftsmanResponseRequest{
			Accept: false,
			Reason: "other",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "ORDER_REASON_REQUIRED")
	})

	t.Run("valid rejection", func(t *testing.T) {
		w := postJSON(t, router, "/orders/"+orderNo+"/response", CraftsmanResponseRequest{
			Accept: false,
			Reason: "time_constraints",
		})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		orderMap := response["order"].(map[string]interface{})
		assert.Equal(t, string(model.OrderStatusRejected), orderMap["status"])
		assert.Equal(t, craftsman.CodeName(), orderMap["rejected_by"])
	})
}

func TestOrderController_Export(t *testing.T) {
	router, testDB := setupOrderControllerTest(t)
	buyer := createControllerTestPartner(t, testDB, "BG001", "Golden House", model.PartnerRoleBuyer)
	placeOrderViaAPI(t, router, buyer.CodeName())

	req := httptest.NewRequest("GET", "/orders/export", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "orders-")
	assert.NotZero(t, w.Body.Len())
}
