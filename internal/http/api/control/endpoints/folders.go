package endpoints

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/nereus/internal/http/api"
	"github.com/Nixie-Tech-LLC/nereus/internal/http/api/control/packets"
	"github.com/Nixie-Tech-LLC/nereus/internal/sysinfo"
)

type FoldersController struct {
	browser *sysinfo.Browser
}

func NewFoldersController(browser *sysinfo.Browser) *FoldersController {
	return &FoldersController{browser: browser}
}

func FoldersModule(browser *sysinfo.Browser) api.Module {
	ctl := NewFoldersController(browser)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/usb-drives", ctl.usbDrives)
		c.POST("/folders/search", ctl.searchFolders)
		c.POST("/folders/create", ctl.createFolder)
	})
}

func (f *FoldersController) usbDrives(ctx *gin.Context) (any, *api.APIError) {
	drives, err := sysinfo.RemovableDrives()
	if err != nil {
		log.Error().Err(err).Msg("usbDrives failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list drives"}
	}
	return drives, nil
}

func (f *FoldersController) searchFolders(ctx *gin.Context) (any, *api.APIError) {
	var request packets.FolderSearchRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	listing, err := f.browser.Browse(request.Path)
	switch {
	case err == nil:
		return listing, nil
	case os.IsNotExist(err):
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "path does not exist: " + request.Path}
	case errors.Is(err, sysinfo.ErrNotDirectory):
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "path is not a directory: " + request.Path}
	case os.IsPermission(err):
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "permission denied reading: " + request.Path}
	default:
		log.Error().Err(err).Str("path", request.Path).Msg("searchFolders failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not browse path"}
	}
}

func (f *FoldersController) createFolder(ctx *gin.Context) (any, *api.APIError) {
	var request packets.FolderCreateRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	err := f.browser.CreateFolder(request.Path)
	switch {
	case err == nil:
		log.Info().Str("path", request.Path).Msg("folder created")
		return gin.H{"message": "folder created", "path": request.Path}, nil
	case errors.Is(err, sysinfo.ErrOutsideRoots):
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "folders can only be created under media and backup paths"}
	case errors.Is(err, sysinfo.ErrFolderExists):
		return nil, &api.APIError{Code: http.StatusConflict, Message: "folder already exists"}
	default:
		log.Error().Err(err).Str("path", request.Path).Msg("createFolder failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create folder"}
	}
}
