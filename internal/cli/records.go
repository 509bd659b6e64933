package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hhvault/hhvault/internal/models"
	"github.com/hhvault/hhvault/internal/services"
)

// Records lists record references. Patients see their own list; doctors
// pass a patient HH number and see it only while their grant stands.
func (a *App) Records(ctx context.Context, args []string) error {
	p := a.sessions.Principal()
	if p == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	var (
		list []models.RecordReference
		err  error
	)
	if p.Role == models.RoleDoctor {
		if len(args) == 0 {
			fmt.Fprintln(a.out, "Usage: records <patient-hh>")
			return nil
		}
		list, err = a.records.ListForDoctor(ctx, a.token, args[0])
	} else {
		list, err = a.records.List(ctx, p.HHNumber)
	}
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err.Error())
		return err
	}

	if len(list) == 0 {
		fmt.Fprintln(a.out, "No records")
		return nil
	}
	for i, r := range list {
		fmt.Fprintf(a.out, "[%d] %s (cid %s, uploaded %s by %s %s)\n",
			i, r.FileName, r.CID, r.UploadedAt.Format("2006-01-02 15:04:05"),
			r.UploaderRole, r.UploaderHH)
	}
	return nil
}

// Upload runs the upload pipeline for a local file. Doctors and diagnostic
// centers are prompted for the target patient and the structured report.
func (a *App) Upload(ctx context.Context, args []string) error {
	p := a.sessions.Principal()
	if p == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: upload <file>")
		return nil
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(a.out, "Cannot read file:", err.Error())
		return err
	}

	req := services.UploadRequest{
		FileName: filepath.Base(path),
		Data:     data,
	}

	if p.Role != models.RolePatient {
		if req.PatientHH, err = GetSimpleText(a.reader, "Target patient HH Number (6 digits)", a.out); err != nil {
			return err
		}
		details := make(map[string]string)
		for _, key := range services.RequiredReportKeys {
			value, err := GetSimpleText(a.reader, key, a.out)
			if err != nil {
				return err
			}
			details[key] = value
		}
		req.ReportDetails = details
	}

	ref, err := a.uploads.Run(ctx, a.token, req)
	if err != nil {
		state, reason := a.uploads.State()
		fmt.Fprintf(a.out, "Upload failed at %s (%s): %s\n", state, reason, err.Error())
		return err
	}

	fmt.Fprintf(a.out, "Uploaded %s, cid %s\n", ref.FileName, ref.CID)
	fmt.Fprintln(a.out, "View at:", a.blobs.GatewayURL(ref.CID))
	return nil
}

// View prints the gateway URL for one of the caller's records by index.
func (a *App) View(ctx context.Context, args []string) error {
	p := a.sessions.Principal()
	if p == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: view <index>")
		return nil
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintln(a.out, "Bad index:", args[0])
		return nil
	}

	list, err := a.records.List(ctx, p.HHNumber)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err.Error())
		return err
	}
	if index < 0 || index >= len(list) {
		fmt.Fprintln(a.out, "No such record")
		return nil
	}

	fmt.Fprintln(a.out, a.blobs.GatewayURL(list[index].CID))
	return nil
}

// Delete removes one of the logged-in patient's records by index.
func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: delete <index>")
		return nil
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintln(a.out, "Bad index:", args[0])
		return nil
	}

	if err := a.records.Delete(ctx, a.token, index); err != nil {
		fmt.Fprintln(a.out, "Delete failed:", err.Error())
		return err
	}

	fmt.Fprintln(a.out, "Record deleted")
	return nil
}
