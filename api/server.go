// Package api exposes the wallet pipeline over HTTP: creation, mnemonic
// recovery, dual-signature signing/verification, derived addresses, and
// encrypted record storage. Wallet passphrases for record operations ride in
// the x-password header; responses never include raw error causes so key
// material cannot leak through error strings.
package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/sirupsen/logrus"

	"github.com/quantumshield/quantumwallet/common"
	"github.com/quantumshield/quantumwallet/config"
	"github.com/quantumshield/quantumwallet/internal/harmonic"
	"github.com/quantumshield/quantumwallet/internal/types"
	"github.com/quantumshield/quantumwallet/internal/wallet"
	"github.com/quantumshield/quantumwallet/storage"
)

type Server struct {
	cfg          *config.Config
	redis        storage.RecordCache
	blockStorage storage.BackupStore
	sdClient     *statsd.Client
	manager      *wallet.Manager
	logger       *logrus.Logger
}

// NewServer returns a new server.
func NewServer(cfg *config.Config,
	redis storage.RecordCache,
	blockStorage storage.BackupStore,
	sdClient *statsd.Client,
	manager *wallet.Manager) *Server {
	return &Server{
		cfg:          cfg,
		redis:        redis,
		blockStorage: blockStorage,
		sdClient:     sdClient,
		manager:      manager,
		logger:       logrus.WithField("service", "api").Logger,
	}
}

func (s *Server) StartServer() error {
	e := echo.New()
	e.Logger.SetLevel(log.INFO)
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("2M"))
	e.Use(s.statsdMiddleware)
	e.Use(middleware.CORS())
	limiterStore := middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{Rate: 5, Burst: 30, ExpiresIn: 5 * time.Minute},
	)
	e.Use(middleware.RateLimiter(limiterStore))
	e.GET("/ping", s.Ping)

	grp := e.Group("/wallet")
	grp.POST("/create", s.CreateWallet)
	grp.POST("/recover", s.RecoverWallet)
	grp.POST("/store", s.StoreWallet)
	grp.GET("/get/:recordId", s.GetWallet)
	grp.GET("/exist/:recordId", s.ExistWallet)
	grp.DELETE("/delete/:recordId", s.DeleteWallet)
	grp.POST("/sign", s.SignTransaction)
	grp.POST("/verify", s.VerifyTransaction)
	grp.POST("/addresses", s.DeriveAddresses)

	return e.Start(fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port))
}

func (s *Server) statsdMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		duration := time.Since(start).Milliseconds()

		_ = s.sdClient.Incr("http.requests", []string{"path:" + c.Path()}, 1)
		_ = s.sdClient.Timing("http.response_time", time.Duration(duration)*time.Millisecond, []string{"path:" + c.Path()}, 1)
		_ = s.sdClient.Incr("http.status."+fmt.Sprint(c.Response().Status), []string{"path:" + c.Path(), "method:" + c.Request().Method}, 1)

		return err
	}
}

func (s *Server) Ping(c echo.Context) error {
	return c.String(http.StatusOK, "Quantum wallet server is running")
}

// mapWalletError turns typed pipeline errors into generic client responses.
// The underlying cause is logged server-side only.
func (s *Server) mapWalletError(c echo.Context, err error) error {
	var invalidMnemonic *harmonic.InvalidMnemonicError
	var recovery *wallet.WalletRecoveryError
	var decryption *wallet.WalletDecryptionError
	var integrity *wallet.QuantumIntegrityError
	switch {
	case errors.As(err, &invalidMnemonic):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid mnemonic"})
	case errors.As(err, &recovery):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "could not recover wallet"})
	case errors.As(err, &decryption), errors.As(err, &integrity):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "could not unlock wallet"})
	default:
		s.logger.WithError(err).Error("wallet operation failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func (s *Server) extractXPassword(c echo.Context) (string, error) {
	passwd := c.Request().Header.Get("x-password")
	if passwd == "" {
		return "", fmt.Errorf("wallet password is required")
	}
	rawPwd, err := base64.StdEncoding.DecodeString(passwd)
	if err == nil && len(rawPwd) > 0 {
		passwd = string(rawPwd)
	}
	return passwd, nil
}

func (s *Server) CreateWallet(c echo.Context) error {
	var req types.WalletCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Passphrase == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "passphrase is required"})
	}
	w, err := s.manager.Create(c.Request().Context(), req.Passphrase, req.AdditionalEntropy)
	if err != nil {
		return s.mapWalletError(c, err)
	}
	_ = s.sdClient.Incr("wallet.created", nil, 1)
	return c.JSON(http.StatusOK, w)
}

func (s *Server) RecoverWallet(c echo.Context) error {
	var req types.WalletRecoverRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Mnemonic == "" || req.Passphrase == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "mnemonic and passphrase are required"})
	}
	w, err := s.manager.Recover(c.Request().Context(), req.Mnemonic, req.Passphrase)
	if err != nil {
		return s.mapWalletError(c, err)
	}
	_ = s.sdClient.Incr("wallet.recovered", nil, 1)
	return c.JSON(http.StatusOK, w)
}

func (s *Server) StoreWallet(c echo.Context) error {
	var req types.WalletStoreRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	passwd, err := s.extractXPassword(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	var w wallet.QuantumWallet
	if err := json.Unmarshal([]byte(req.Wallet), &w); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid wallet payload"})
	}
	record, err := s.manager.EncryptForStorage(&w, passwd)
	if err != nil {
		return s.mapWalletError(c, err)
	}
	item := &types.WalletRecordItem{
		RecordID: uuid.New().String(),
		Identity: s.manager.Identity(&w),
		Record:   record,
	}
	if err := s.redis.SetWalletRecord(c.Request().Context(), item); err != nil {
		s.logger.WithError(err).Error("fail to cache wallet record")
	}
	// the backup copy is re-encrypted under the server secret before leaving
	// the process
	sealed, err := common.Encrypt(s.cfg.Server.EncryptionSecret, record)
	if err != nil {
		return s.mapWalletError(c, err)
	}
	if err := s.blockStorage.UploadFileWithRetry([]byte(sealed), item.RecordID+".bak", 3); err != nil {
		s.logger.WithError(err).Error("fail to back up wallet record")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	_ = s.sdClient.Incr("wallet.stored", nil, 1)
	return c.JSON(http.StatusOK, types.WalletStoreResponse{
		RecordID: item.RecordID,
		Identity: item.Identity,
	})
}

// loadRecord fetches an encrypted record from the cache, falling back to the
// block storage backup.
func (s *Server) loadRecord(c echo.Context, recordID string) (string, error) {
	if item, err := s.redis.GetWalletRecord(c.Request().Context(), recordID); err == nil {
		return item.Record, nil
	}
	sealed, err := s.blockStorage.GetFile(recordID + ".bak")
	if err != nil {
		return "", fmt.Errorf("fail to load record %s: %w", recordID, err)
	}
	record, err := common.Decrypt(s.cfg.Server.EncryptionSecret, string(sealed))
	if err != nil {
		return "", fmt.Errorf("fail to unseal record %s: %w", recordID, err)
	}
	return record, nil
}

// unlockWallet loads and decrypts a stored wallet using the request password.
func (s *Server) unlockWallet(c echo.Context, recordID string) (*wallet.QuantumWallet, error) {
	passwd, err := s.extractXPassword(c)
	if err != nil {
		return nil, &wallet.WalletDecryptionError{Err: err}
	}
	record, err := s.loadRecord(c, recordID)
	if err != nil {
		return nil, &wallet.WalletDecryptionError{Err: err}
	}
	return s.manager.DecryptFromStorage(record, passwd)
}

func (s *Server) GetWallet(c echo.Context) error {
	recordID := c.Param("recordId")
	if recordID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "record id is required"})
	}
	w, err := s.unlockWallet(c, recordID)
	if err != nil {
		return s.mapWalletError(c, err)
	}
	return c.JSON(http.StatusOK, w)
}

func (s *Server) ExistWallet(c echo.Context) error {
	recordID := c.Param("recordId")
	if recordID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "record id is required"})
	}
	if _, err := s.redis.GetWalletRecord(c.Request().Context(), recordID); err == nil {
		return c.NoContent(http.StatusOK)
	}
	if exist, err := s.blockStorage.FileExist(recordID + ".bak"); err == nil && exist {
		return c.NoContent(http.StatusOK)
	}
	return c.NoContent(http.StatusNotFound)
}

func (s *Server) DeleteWallet(c echo.Context) error {
	recordID := c.Param("recordId")
	if recordID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "record id is required"})
	}
	// deleting requires proving the caller can unlock the record first
	if _, err := s.unlockWallet(c, recordID); err != nil {
		return s.mapWalletError(c, err)
	}
	if err := s.redis.DeleteWalletRecord(c.Request().Context(), recordID); err != nil {
		s.logger.WithError(err).Error("fail to evict wallet record")
	}
	if err := s.blockStorage.DeleteFile(recordID + ".bak"); err != nil {
		s.logger.WithError(err).Error("fail to delete wallet record backup")
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) SignTransaction(c echo.Context) error {
	var req types.TransactionSignRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.RecordID == "" || req.Transaction == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "record id and transaction are required"})
	}
	w, err := s.unlockWallet(c, req.RecordID)
	if err != nil {
		return s.mapWalletError(c, err)
	}
	signed, err := s.manager.SignTransaction(w, req.Transaction)
	if err != nil {
		return s.mapWalletError(c, err)
	}
	_ = s.sdClient.Incr("wallet.signed", nil, 1)
	return c.JSON(http.StatusOK, map[string]string{"signed_transaction": signed})
}

func (s *Server) VerifyTransaction(c echo.Context) error {
	var req types.TransactionVerifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.RecordID == "" || req.SignedTransaction == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "record id and signed transaction are required"})
	}
	w, err := s.unlockWallet(c, req.RecordID)
	if err != nil {
		return s.mapWalletError(c, err)
	}
	valid := s.manager.VerifySignedTransaction(req.SignedTransaction, w)
	return c.JSON(http.StatusOK, map[string]bool{"valid": valid})
}

func (s *Server) DeriveAddresses(c echo.Context) error {
	var req types.AddressDeriveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.RecordID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "record id is required"})
	}
	if req.Count < 0 || req.Count > 100 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "count must be between 0 and 100"})
	}
	count := req.Count
	if count == 0 {
		count = wallet.DefaultAddressCount
	}
	w, err := s.unlockWallet(c, req.RecordID)
	if err != nil {
		return s.mapWalletError(c, err)
	}
	addresses, err := s.manager.DeriveAddresses(w, count)
	if err != nil {
		return s.mapWalletError(c, err)
	}
	return c.JSON(http.StatusOK, map[string][]string{"addresses": addresses})
}
