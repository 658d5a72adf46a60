package webpath

const (
	Health = "/health"

	Api = "/api"

	ApiUsers   = Api + "/users"
	ApiAuth    = Api + "/auth"
	ApiProfile = Api + "/profile"

	ApiProfileMe      = ApiProfile + "/me"
	ApiProfileByUser  = ApiProfile + "/user/:" + ParamUserID
	ApiExperience     = ApiProfile + "/experience"
	ApiExperienceByID = ApiExperience + "/:" + ParamExperienceID
	ApiEducation      = ApiProfile + "/education"
	ApiEducationByID  = ApiEducation + "/:" + ParamEducationID
)

const (
	ParamUserID       = "user_id"
	ParamExperienceID = "exp_id"
	ParamEducationID  = "edu_id"
)
