package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/forkline/forkline/backend/config"
)

// ImageGenerationRequest represents a request to the images API
type ImageGenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	Quality        string `json:"quality"`
	ResponseFormat string `json:"response_format"`
}

// ImageGenerationResponse represents the response from the images API
type ImageGenerationResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL           string `json:"url,omitempty"`
		B64JSON       string `json:"b64_json,omitempty"`
		RevisedPrompt string `json:"revised_prompt,omitempty"`
	} `json:"data"`
}

// ImageService generates illustrative recipe images and stores them in
// S3. It is an optional enrichment: every caller treats a failure here as
// "no image", never as a failed request.
type ImageService struct {
	apiKey     string
	apiURL     string
	s3Config   *config.S3Config
	client     *http.Client
	retryDelay time.Duration
}

// NewImageService creates a new ImageService instance
func NewImageService(s3Config *config.S3Config) (*ImageService, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		apiKeyFile := os.Getenv("OPENAI_API_KEY_FILE")
		if apiKeyFile == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY or OPENAI_API_KEY_FILE must be set")
		}

		apiKeyBytes, err := os.ReadFile(apiKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read API key file: %w", err)
		}

		apiKey = strings.TrimSpace(string(apiKeyBytes))
		if apiKey == "" {
			return nil, fmt.Errorf("API key file is empty")
		}
	}

	apiURL := os.Getenv("OPENAI_IMAGES_API_URL")
	if apiURL == "" {
		apiURL = "https://api.openai.com/v1/images/generations"
	}

	return &ImageService{
		apiKey:   apiKey,
		apiURL:   apiURL,
		s3Config: s3Config,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		retryDelay: time.Second,
	}, nil
}

// NewImageServiceForEndpoint creates an ImageService against an explicit
// endpoint. Intended for tests.
func NewImageServiceForEndpoint(apiURL, apiKey string, s3Config *config.S3Config) *ImageService {
	return &ImageService{
		apiKey:     apiKey,
		apiURL:     apiURL,
		s3Config:   s3Config,
		client:     &http.Client{Timeout: 60 * time.Second},
		retryDelay: 10 * time.Millisecond,
	}
}

// GenerateRecipeImage builds a food-photography prompt from the recipe's
// title and description and returns the stored image URL.
func (s *ImageService) GenerateRecipeImage(ctx context.Context, title, description string) (string, error) {
	prompt := buildRecipeImagePrompt(title, description)
	log.Printf("[ImageService] Generating image for recipe '%s'", title)

	imageData, err := s.generateImage(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate recipe image: %w", err)
	}

	fileName := fmt.Sprintf("recipe-images/%s.png", uuid.New().String())
	return s.UploadImageToS3(ctx, imageData, fileName)
}

// generateImage calls the images API, retrying transient failures with a
// linear backoff before giving up.
func (s *ImageService) generateImage(ctx context.Context, prompt string) ([]byte, error) {
	const maxRetries = 3

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		imageData, err := s.generateImageAttempt(ctx, prompt)
		if err == nil {
			if attempt > 1 {
				log.Printf("[ImageService] Image generated on attempt %d", attempt)
			}
			return imageData, nil
		}

		lastErr = err
		log.Printf("[ImageService] Attempt %d/%d failed: %v", attempt, maxRetries, err)
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * s.retryDelay):
			}
		}
	}

	return nil, fmt.Errorf("failed to generate image after %d attempts: %w", maxRetries, lastErr)
}

// generateImageAttempt performs a single call with fixed generation
// parameters: one 1024x1024 image returned inline as base64.
func (s *ImageService) generateImageAttempt(ctx context.Context, prompt string) ([]byte, error) {
	reqBody := ImageGenerationRequest{
		Model:          "dall-e-3",
		Prompt:         prompt,
		N:              1,
		Size:           "1024x1024",
		Quality:        "standard",
		ResponseFormat: "b64_json",
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("[ImageService] API request failed with status %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("API request failed with status %d", resp.StatusCode)
	}

	var result ImageGenerationResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Data) == 0 || result.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("no image data in API response")
	}

	imageData, err := base64.StdEncoding.DecodeString(result.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}

	return imageData, nil
}

// UploadImageToS3 uploads image data to S3 and returns the public URL
func (s *ImageService) UploadImageToS3(ctx context.Context, imageData []byte, fileName string) (string, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(imageData),
		ContentType: aws.String("image/png"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName)
	log.Printf("[ImageService] Successfully uploaded image to S3: %s", publicURL)

	return publicURL, nil
}

// buildRecipeImagePrompt creates the enrichment prompt from the recipe
// content.
func buildRecipeImagePrompt(title, description string) string {
	prompt := "Professional food photography of " + strings.ToLower(title)
	if description != "" {
		prompt += ", " + strings.ToLower(description)
	}
	prompt += ", appetizing, natural lighting, restaurant quality presentation, high resolution"

	if len(prompt) > 900 {
		prompt = prompt[:900]
	}

	return prompt
}
