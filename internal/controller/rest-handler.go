package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sharetube/videochat/internal/playback"
	"github.com/sharetube/videochat/internal/service/room"
	"github.com/sharetube/videochat/pkg/rest"
	"github.com/sharetube/videochat/pkg/videodata"
)

func (c controller) getRoom(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	roomState, err := c.roomService.GetRoom(r.Context(), roomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": err.Error()})
			return
		}
		c.logger.WarnContext(r.Context(), "failed to get room", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal error"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": roomState})
}

type videoInfoQuery struct {
	URL string `json:"url" validate:"required,url"`
}

type videoInfoResponse struct {
	Source playback.Source      `json:"source"`
	Video  *videodata.VideoData `json:"video"`
}

func (c controller) getVideoInfo(w http.ResponseWriter, r *http.Request) {
	query := videoInfoQuery{URL: r.URL.Query().Get("url")}
	if validationErrors, ok := c.validate.Validate(query); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	src := playback.ParseSource(query.URL)
	if src.Kind == playback.KindFile {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "unsupported source"})
		return
	}
	if src.VideoId == "" {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "video id not found"})
		return
	}

	var (
		video *videodata.VideoData
		err   error
	)
	switch src.Kind {
	case playback.KindYouTube:
		video, err = c.videoData.YouTube(r.Context(), src.VideoId)
	case playback.KindDailymotion:
		video, err = c.videoData.Dailymotion(r.Context(), src.VideoId)
	}
	if err != nil {
		switch {
		case errors.Is(err, videodata.ErrVideoNotFound):
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": err.Error()})
		case errors.Is(err, videodata.ErrVideoNotEmbeddable):
			rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		default:
			c.logger.WarnContext(r.Context(), "failed to get video info", "error", err)
			rest.WriteJSON(w, http.StatusBadGateway, rest.Envelope{"error": "video provider unavailable"})
		}
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": videoInfoResponse{
		Source: src,
		Video:  video,
	}})
}
