package http

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/domain/model"
	"github.com/secmon-lab/tributary/pkg/domain/types"
	"github.com/secmon-lab/tributary/pkg/usecase"
	"github.com/secmon-lab/tributary/pkg/utils/safe"
)

func configID(r *http.Request) model.SyncConfigID {
	return model.SyncConfigID(chi.URLParam(r, "id"))
}

func listSyncConfigsHandler(uc *usecase.SyncConfigUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		configs, err := uc.List(r.Context())
		if err != nil {
			handleError(w, r, err)
			return
		}

		resp := make([]*syncConfigResponse, len(configs))
		for i, cfg := range configs {
			resp[i] = toSyncConfigResponse(cfg)
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

func createSyncConfigHandler(uc *usecase.SyncConfigUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req syncConfigRequest
		if err := decodeJSON(w, r, maxConfigBodySize, &req); err != nil {
			handleError(w, r, err)
			return
		}

		created, err := uc.Create(r.Context(), req.toModel(""))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusCreated, toSyncConfigResponse(created))
	}
}

func getSyncConfigHandler(uc *usecase.SyncConfigUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := uc.Get(r.Context(), configID(r))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, toSyncConfigResponse(cfg))
	}
}

// updateSyncConfigHandler replaces a configuration. Headers omitted from the
// request keep their stored values, since responses never return them.
func updateSyncConfigHandler(uc *usecase.SyncConfigUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req syncConfigRequest
		if err := decodeJSON(w, r, maxConfigBodySize, &req); err != nil {
			handleError(w, r, err)
			return
		}

		existing, err := uc.Get(r.Context(), configID(r))
		if err != nil {
			handleError(w, r, err)
			return
		}

		cfg := req.toModel(existing.ID)
		if req.Source.Headers == nil {
			cfg.Source.Headers = existing.Source.Headers
		}

		updated, err := uc.Update(r.Context(), cfg)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, toSyncConfigResponse(updated))
	}
}

func deleteSyncConfigHandler(uc *usecase.SyncConfigUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := uc.Delete(r.Context(), configID(r)); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func setEnabledHandler(uc *usecase.SyncConfigUseCase, enabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := uc.SetEnabled(r.Context(), configID(r), enabled)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, toSyncConfigResponse(cfg))
	}
}

// runSyncHandler runs a manual sync. A failed run still answers 200 with the
// result; only an unknown configuration is an HTTP error.
func runSyncHandler(configs *usecase.SyncConfigUseCase, syncUC *usecase.SyncUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := configs.Get(r.Context(), configID(r))
		if err != nil {
			handleError(w, r, err)
			return
		}

		result := syncUC.Sync(r.Context(), cfg.ID, types.TriggerManual)
		writeJSON(w, r, http.StatusOK, toSyncResultResponse(result))
	}
}

func historyHandler(uc *usecase.SyncUseCase, defaultLimit int, byConfig bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				handleError(w, r, goerr.Wrap(errBadRequest, "invalid limit", goerr.V("limit", v)))
				return
			}
			limit = n
		}

		var id model.SyncConfigID
		if byConfig {
			id = configID(r)
		}

		entries, err := uc.GetHistory(r.Context(), id, limit)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, toHistoryResponse(entries))
	}
}

func previewHandler(uc *usecase.SchemaUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := http.MaxBytesReader(w, r.Body, maxPreviewBodySize)
		defer safe.Close(r.Context(), body)

		raw, err := io.ReadAll(body)
		if err != nil {
			handleError(w, r, goerr.Wrap(errBadRequest, "failed to read request body", goerr.V("error", err.Error())))
			return
		}

		mapping, err := uc.Preview(r.Context(), raw)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, toSchemaPreviewResponse(mapping))
	}
}

func putLookupListHandler(uc *usecase.LookupUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req lookupListRequest
		if err := decodeJSON(w, r, maxPreviewBodySize, &req); err != nil {
			handleError(w, r, err)
			return
		}

		list := &model.LookupList{Name: chi.URLParam(r, "name"), Items: req.Items}
		if err := uc.PutList(r.Context(), list); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
