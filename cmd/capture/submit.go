package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/agroflow/logicapture/internal/models"
	"github.com/agroflow/logicapture/internal/records"
	"github.com/agroflow/logicapture/internal/scanner"
	"github.com/agroflow/logicapture/internal/services/sap"
)

// apiClient talks to the server with the operator's access token.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// duplicatesError carries the uniqueness conflicts of a rejected submission.
type duplicatesError struct {
	items []models.DuplicateItem
}

func (e *duplicatesError) Error() string {
	return fmt.Sprintf("%d valores duplicados", len(e.items))
}

// buildCreateInput flattens the capture form into the registration payload.
// Groups are slash-joined the way the server stores them.
func buildCreateInput(f scanner.FormState) records.CreateInput {
	plates := f.PlacaTracto
	if f.PlacaCarreta != "" {
		plates = f.PlacaTracto + "/" + f.PlacaCarreta
	}
	return records.CreateInput{
		Booking:      f.Booking,
		OBeta:        f.OBeta,
		AWB:          f.AWB,
		DAM:          f.DAM,
		DNI:          f.DNI,
		Plates:       plates,
		Thermographs: strings.Join(f.TermografoItems, "/"),
		PSBeta:       strings.Join(f.PSBetaItems, "/"),
		PSAduana:     f.PSAduana,
		PSOperador:   f.PSOperador,
		Senasa:       f.Senasa,
		PSLinea:      f.PSLinea,
	}
}

// createRecord registers the form on the server and returns the record id.
func (c *apiClient) createRecord(ctx context.Context, in records.CreateInput) (uint, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/registros", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		var conflict struct {
			Items []models.DuplicateItem `json:"duplicados"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&conflict); err == nil && len(conflict.Items) > 0 {
			return 0, &duplicatesError{items: conflict.Items}
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, apiError(resp)
	}

	var created struct {
		ID uint `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

// sapRow fetches the flattened SAP row of a record.
func (c *apiClient) sapRow(ctx context.Context, id uint) (sap.Row, error) {
	var row sap.Row

	url := fmt.Sprintf("%s/api/v1/registros/%d/sap", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return row, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return row, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return row, apiError(resp)
	}
	err = json.NewDecoder(resp.Body).Decode(&row)
	return row, err
}

func apiError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		return fmt.Errorf("%s", payload.Error)
	}
	return fmt.Errorf("respuesta inesperada del servidor: %s", resp.Status)
}
