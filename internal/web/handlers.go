package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/goserg/devconnector/internal/web/webpath"
)

var errMalformedBody = fiber.NewError(fiber.StatusBadRequest, "Malformed request body")

// parseBody decodes and validates the request body into req.
func parseBody(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return errMalformedBody
	}
	return validateRequest(req)
}

func (s *Server) handleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return errMalformedBody
	}
	req.normalize()
	if err := validateRequest(&req); err != nil {
		return err
	}
	token, err := s.auth.SignUp(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(tokenResponse{Token: token})
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return errMalformedBody
	}
	req.normalize()
	if err := validateRequest(&req); err != nil {
		return err
	}
	token, err := s.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(tokenResponse{Token: token})
}

func (s *Server) handleMe(c *fiber.Ctx) error {
	user, err := s.auth.Me(c.UserContext(), currentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(newUserResponse(user))
}

func (s *Server) handleMyProfile(c *fiber.Ctx) error {
	p, err := s.profiles.Me(c.UserContext(), currentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(newProfileResponse(p))
}

func (s *Server) handleUpsertProfile(c *fiber.Ctx) error {
	var req profileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	fields, err := req.toFields()
	if err != nil {
		return err
	}
	p, err := s.profiles.Upsert(c.UserContext(), currentUser(c), fields)
	if err != nil {
		return err
	}
	return c.JSON(newProfileResponse(p))
}

func (s *Server) handleListProfiles(c *fiber.Ctx) error {
	list, err := s.profiles.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(newProfileList(list))
}

func (s *Server) handleProfileByUser(c *fiber.Ctx) error {
	p, err := s.profiles.ByUser(c.UserContext(), c.Params(webpath.ParamUserID))
	if err != nil {
		return err
	}
	return c.JSON(newProfileResponse(p))
}

func (s *Server) handleDeleteAccount(c *fiber.Ctx) error {
	if err := s.profiles.DeleteAccount(c.UserContext(), currentUser(c)); err != nil {
		return err
	}
	return c.JSON(message{Msg: "User deleted"})
}

func (s *Server) handleAddExperience(c *fiber.Ctx) error {
	var req experienceRequest
	err := parseBody(c, &req)
	if err != nil && !isValidation(err) {
		return err
	}
	exp, perr := req.toDomain()
	if err != nil || perr != nil {
		return joinFieldErrors(err, perr, "from")
	}
	p, err := s.profiles.AddExperience(c.UserContext(), currentUser(c), exp)
	if err != nil {
		return err
	}
	return c.JSON(newProfileResponse(p))
}

func (s *Server) handleRemoveExperience(c *fiber.Ctx) error {
	p, err := s.profiles.RemoveExperience(c.UserContext(), currentUser(c), c.Params(webpath.ParamExperienceID))
	if err != nil {
		return err
	}
	return c.JSON(newProfileResponse(p))
}

func (s *Server) handleAddEducation(c *fiber.Ctx) error {
	var req educationRequest
	err := parseBody(c, &req)
	if err != nil && !isValidation(err) {
		return err
	}
	edu, perr := req.toDomain()
	if err != nil || perr != nil {
		return joinFieldErrors(err, perr, "from")
	}
	p, err := s.profiles.AddEducation(c.UserContext(), currentUser(c), edu)
	if err != nil {
		return err
	}
	return c.JSON(newProfileResponse(p))
}

func (s *Server) handleRemoveEducation(c *fiber.Ctx) error {
	p, err := s.profiles.RemoveEducation(c.UserContext(), currentUser(c), c.Params(webpath.ParamEducationID))
	if err != nil {
		return err
	}
	return c.JSON(newProfileResponse(p))
}

// joinFieldErrors merges rule violations with date parsing failures. A
// missing date already has its own message, so its parse failure is dropped.
func joinFieldErrors(validation, parsing error, param string) error {
	if validation == nil {
		return parsing
	}
	missing := false
	for _, err := range unwrap(validation) {
		var ferr fieldError
		if errors.As(err, &ferr) && ferr.param == param {
			missing = true
		}
	}
	var errs []error
	errs = append(errs, validation)
	for _, err := range unwrap(parsing) {
		var ferr fieldError
		if missing && errors.As(err, &ferr) && ferr.param == param {
			continue
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
