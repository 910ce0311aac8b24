package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var data string

var anchorCmd = &cobra.Command{
	Use:   "anchor",
	Short: "Anchor a payload on a node",
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := anchor(url, data)
		if err != nil {
			log.Fatal(err)
		}

		pterm.Success.Printfln("anchored block %d: %s", resp.Index, resp.Digest)
	},
}

func init() {
	rootCmd.AddCommand(anchorCmd)
	anchorCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	anchorCmd.Flags().StringVarP(&data, "data", "d", "", "Payload to anchor.")
}

type anchorResponse struct {
	Digest string `json:"digest"`
	Index  int    `json:"index"`
}

func anchor(url string, payload string) (anchorResponse, error) {
	req := struct {
		Payload string `json:"payload"`
	}{
		Payload: payload,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return anchorResponse{}, err
	}

	resp, err := client.Post(fmt.Sprintf("%s/v1/ledger/anchor", url), "application/json", bytes.NewReader(body))
	if err != nil {
		return anchorResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return anchorResponse{}, fmt.Errorf("anchor: status %d: %s", resp.StatusCode, msg)
	}

	var ar anchorResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return anchorResponse{}, err
	}

	return ar, nil
}
