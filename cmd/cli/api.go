package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iho/banky/internal/adapter/http/dto"
)

const documentsPath = "/api/v1/documents"

// apiError is a non-2xx answer from the API.
type apiError struct {
	Status int
	Body   dto.ErrorResponse
}

func (e *apiError) Error() string {
	if e.Body.Message != "" {
		return fmt.Sprintf("api returned %d: %s: %s", e.Status, e.Body.Error, e.Body.Message)
	}
	return fmt.Sprintf("api returned %d: %s", e.Status, e.Body.Error)
}

func apiClient() *http.Client {
	return &http.Client{Timeout: timeout}
}

// doJSON sends req and decodes a 2xx JSON body into out.
func doJSON(client *http.Client, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &apiError{Status: resp.StatusCode}
		if json.Unmarshal(body, &apiErr.Body) != nil || apiErr.Body.Error == "" {
			apiErr.Body.Error = strings.TrimSpace(string(body))
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+path, nil)
	if err != nil {
		return err
	}
	return doJSON(apiClient(), req, out)
}

func uploadFile(ctx context.Context, path string) (*dto.UploadResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+documentsPath, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out dto.UploadResponse
	if err := doJSON(apiClient(), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func uploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <statement.pdf>",
		Short: "Upload a statement for processing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := uploadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func statusCmd() *cobra.Command {
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "status [document-id]",
		Short: "Show one document, or list recent documents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				var doc dto.DocumentResponse
				if err := getJSON(cmd.Context(), documentsPath+"/"+url.PathEscape(args[0]), &doc); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), doc)
			}

			q := url.Values{}
			q.Set("limit", fmt.Sprint(limit))
			if status != "" {
				q.Set("status", status)
			}
			var docs []*dto.DocumentResponse
			if err := getJSON(cmd.Context(), documentsPath+"?"+q.Encode(), &docs); err != nil {
				return err
			}
			return printDocuments(cmd.OutOrStdout(), docs)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only list documents in this status")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum documents to list")
	return cmd
}

func printDocuments(w io.Writer, docs []*dto.DocumentResponse) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tBANK\tFILE\tERROR")
	for _, d := range docs {
		errMsg := ""
		if d.Error != nil {
			errMsg = truncate(*d.Error, 40)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.ID, d.Status, d.Bank, truncate(d.Filename, 32), errMsg)
	}
	return tw.Flush()
}

func resultCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "result <document-id>",
		Short: "Fetch the extracted transactions of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(format); err != nil {
				return err
			}
			var res dto.ResultResponse
			if err := getJSON(cmd.Context(), documentsPath+"/"+url.PathEscape(args[0])+"/transactions", &res); err != nil {
				return err
			}
			return renderResult(cmd.OutOrStdout(), format, &res)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "Output format: json or csv")
	return cmd
}
