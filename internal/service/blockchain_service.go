package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"learntwin_backend/internal/config"
	"net/http"
)

// BlockchainService 封装对外部NFT铸造协作方的REST调用。
// 对本服务而言铸造是不透明操作：发请求、拿交易引用，
// 链上细节（gas、确认数）全部由协作方负责
type BlockchainService struct {
	cfg    *config.BlockchainConfig
	client *http.Client
}

func NewBlockchainService(cfg *config.Config) *BlockchainService {
	return &BlockchainService{
		cfg: &cfg.Blockchain,
		client: &http.Client{
			Timeout: cfg.Blockchain.RequestTimeout,
		},
	}
}

// MintRequest 模块成就NFT铸造请求
type MintRequest struct {
	UserID        uint   `json:"userId"`
	WalletAddress string `json:"walletAddress,omitempty"`
	ModuleID      uint   `json:"moduleId"`
	ModuleTitle   string `json:"moduleTitle"`
	Score         int    `json:"score"`
}

// CertificateRequest 课程完成证书签发请求
type CertificateRequest struct {
	UserID        uint   `json:"userId"`
	WalletAddress string `json:"walletAddress,omitempty"`
	CourseID      uint   `json:"courseId"`
	CourseTitle   string `json:"courseTitle"`
}

// MintResult 协作方返回的受理结果。铸造可能是异步最终一致的，
// TxRef 用于后续对账
type MintResult struct {
	TxRef  string `json:"txRef"`
	Status string `json:"status"`
}

func (s *BlockchainService) MintModuleNFT(ctx context.Context, req *MintRequest) (*MintResult, error) {
	return s.post(ctx, "/mints", req)
}

func (s *BlockchainService) IssueCertificate(ctx context.Context, req *CertificateRequest) (*MintResult, error) {
	return s.post(ctx, "/certificates", req)
}

func (s *BlockchainService) post(ctx context.Context, path string, payload interface{}) (*MintResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("blockchain service returned %d: %s", resp.StatusCode, string(raw))
	}

	var result MintResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}
