package lark

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	larkIm "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"
)

// Receive ID types accepted by im.v1.message.create
const (
	ReceiveIDTypeChatID = "chat_id"
	ReceiveIDTypeOpenID = "open_id"

	msgTypeText = "text"
	msgTypeFile = "file"

	// im.v1 file type for Excel workbooks
	fileTypeExcel = "xls"
)

// MessageAPI handles Lark messaging operations
type MessageAPI struct {
	client *Client
	logger *zap.Logger
}

// NewMessageAPI creates a new message API handler
func NewMessageAPI(client *Client, logger *zap.Logger) *MessageAPI {
	return &MessageAPI{
		client: client,
		logger: logger,
	}
}

// SendText posts a plain text message to a chat and returns its message ID
func (m *MessageAPI) SendText(ctx context.Context, chatID, text string) (string, error) {
	content, err := TextContent(text)
	if err != nil {
		return "", err
	}
	return m.SendMessage(ctx, ReceiveIDTypeChatID, chatID, msgTypeText, content)
}

// SendFile uploads the file at path and posts it to a chat as a file message
func (m *MessageAPI) SendFile(ctx context.Context, chatID, path string) (string, error) {
	fileKey, err := m.UploadFile(ctx, path)
	if err != nil {
		return "", err
	}
	content, err := FileContent(fileKey)
	if err != nil {
		return "", err
	}
	return m.SendMessage(ctx, ReceiveIDTypeChatID, chatID, msgTypeFile, content)
}

// UploadFile uploads a workbook through im.v1.file.create and returns its file key
func (m *MessageAPI) UploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file for upload: %w", err)
	}
	defer f.Close()

	req := larkIm.NewCreateFileReqBuilder().
		Body(larkIm.NewCreateFileReqBodyBuilder().
			FileType(fileTypeExcel).
			FileName(filepath.Base(path)).
			File(f).
			Build()).
		Build()

	resp, err := m.client.client.Im.File.Create(ctx, req)
	if err != nil {
		m.logger.Error("Failed to upload file",
			zap.String("path", path),
			zap.Error(err))
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	if !resp.Success() {
		m.logger.Error("API returned failure",
			zap.String("path", path),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return "", fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	if resp.Data == nil || resp.Data.FileKey == nil {
		return "", fmt.Errorf("upload response carries no file key")
	}
	return *resp.Data.FileKey, nil
}

// SendMessage sends a message to a user or group
func (m *MessageAPI) SendMessage(ctx context.Context, receiveIDType, receiveID, msgType, content string) (string, error) {
	req := larkIm.NewCreateMessageReqBuilder().
		ReceiveIdType(receiveIDType).
		Body(larkIm.NewCreateMessageReqBodyBuilder().
			ReceiveId(receiveID).
			MsgType(msgType).
			Content(content).
			Build()).
		Build()

	resp, err := m.client.client.Im.Message.Create(ctx, req)
	if err != nil {
		m.logger.Error("Failed to send message",
			zap.String("receive_id", receiveID),
			zap.Error(err))
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	if !resp.Success() {
		m.logger.Error("API returned failure",
			zap.String("receive_id", receiveID),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return "", fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	messageID := ""
	if resp.Data != nil && resp.Data.MessageId != nil {
		messageID = *resp.Data.MessageId
	}

	m.logger.Info("Message sent successfully",
		zap.String("message_id", messageID),
		zap.String("receive_id", receiveID))

	return messageID, nil
}

// TextContent encodes text as the content payload of a text message
func TextContent(text string) (string, error) {
	b, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", fmt.Errorf("failed to encode message content: %w", err)
	}
	return string(b), nil
}

// FileContent encodes a file key as the content payload of a file message
func FileContent(fileKey string) (string, error) {
	b, err := json.Marshal(map[string]string{"file_key": fileKey})
	if err != nil {
		return "", fmt.Errorf("failed to encode message content: %w", err)
	}
	return string(b), nil
}
